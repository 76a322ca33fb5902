package job

// Progress is the number of files done out of the total enumerated.
type Progress struct {
	Completed int
	Total     int
}

// Fraction returns the completed share in [0, 1]. An empty job counts as done.
func (p Progress) Fraction() float64 {
	if p.Total == 0 {
		return 1
	}

	return float64(p.Completed) / float64(p.Total)
}

// Done reports whether every enumerated file has been processed.
func (p Progress) Done() bool {
	return p.Completed == p.Total
}
