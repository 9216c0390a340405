package validation

const (
	// String lengths
	MaxPeriodCodeLength = 32
	MaxProvinceLength   = 8
	MaxCategoryLength   = 4

	// Batch requests
	MaxBatchClients = 500

	DateLayout = "2006-01-02"
)
