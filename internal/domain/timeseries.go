package domain

// DailyValue is one row of a daily time series, kept verbatim as returned
// by NWIS (timestamps and values are not reinterpreted before persisting).
type DailyValue struct {
	DateTime   string
	Value      string
	Qualifiers string
}

// Series is the daily time series for one site and parameter.
type Series struct {
	SiteNo       string
	ParameterCd  string
	VariableName string
	Unit         string
	Values       []DailyValue
}

// Empty reports whether the series carries no data points.
func (s Series) Empty() bool {
	return len(s.Values) == 0
}
