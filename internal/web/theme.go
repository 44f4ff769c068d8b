package web

// Theme is the console palette.
type Theme struct {
	Primary   string
	Secondary string
	Success   string
	Warning   string
	Error     string
	Info      string
}

func DefaultTheme() Theme {
	return Theme{
		Primary:   "#1976d2",
		Secondary: "#dc004e",
		Success:   "#2e7d32",
		Warning:   "#ed6c02",
		Error:     "#d32f2f",
		Info:      "#0288d1",
	}
}
