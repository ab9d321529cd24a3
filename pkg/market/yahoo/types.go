package yahoo

// quoteEnvelope mirrors the fields read from the v7 quote endpoint. Pointers
// distinguish absent fields from zero values.
type quoteEnvelope struct {
	QuoteResponse struct {
		Result []quoteResult `json:"result"`
		Error  *apiError     `json:"error"`
	} `json:"quoteResponse"`
}

type apiError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

type quoteResult struct {
	Symbol                     string   `json:"symbol"`
	RegularMarketPrice         *float64 `json:"regularMarketPrice"`
	PostMarketPrice            *float64 `json:"postMarketPrice"`
	RegularMarketPreviousClose *float64 `json:"regularMarketPreviousClose"`
	RegularMarketChangePercent *float64 `json:"regularMarketChangePercent"`
	RegularMarketVolume        *int64   `json:"regularMarketVolume"`
	Beta                       *float64 `json:"beta"`
}
