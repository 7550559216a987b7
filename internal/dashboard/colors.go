package dashboard

// palette is the Category10 scheme the charts have always used.
var palette = []string{
	"#1f77b4", "#ff7f0e", "#2ca02c", "#d62728", "#9467bd",
	"#8c564b", "#e377c2", "#7f7f7f", "#bcbd22", "#17becf",
}

// Colors returns exactly n colors, cycling the base palette as needed. The
// sequence is a pure function of n so repeated renders color categories
// identically.
func Colors(n int) []string {
	if n <= 0 {
		return []string{}
	}
	out := make([]string, n)
	for i := 0; i < n; i++ {
		out[i] = palette[i%len(palette)]
	}
	return out
}
