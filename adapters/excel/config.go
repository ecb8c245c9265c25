package excel

// ColumnConfig names the columns holding an observed light curve
type ColumnConfig struct {
	Sheet string `json:"sheet" yaml:"sheet"`
	Time  string `json:"time" yaml:"time"`
	Value string `json:"value" yaml:"value"`
	Sigma string `json:"sigma" yaml:"sigma"`
}

// DefaultColumnConfig reads Sheet1 with columns t, ydata and an optional sigma
func DefaultColumnConfig() ColumnConfig {
	return ColumnConfig{
		Sheet: "Sheet1",
		Time:  "t",
		Value: "ydata",
		Sigma: "sigma",
	}
}
