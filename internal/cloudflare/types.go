package cloudflare

// Zone is a domain managed under the Cloudflare account.
type Zone struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Record is a DNS record within a zone. TTL 1 means "automatic".
type Record struct {
	ID      string `json:"id"`
	Type    string `json:"type"`
	Name    string `json:"name"`
	Content string `json:"content"`
	Proxied bool   `json:"proxied"`
	TTL     int    `json:"ttl"`
}

// RecordParams carries the full set of fields for record creation and update.
// The Cloudflare API has no partial patch in this design, so updates must
// supply every field even when unchanged.
type RecordParams struct {
	Type    string `json:"type"`
	Name    string `json:"name"`
	Content string `json:"content"`
	Proxied bool   `json:"proxied"`
	TTL     int    `json:"ttl"`
}

type apiMessage struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type zonesResponse struct {
	Success bool         `json:"success"`
	Errors  []apiMessage `json:"errors"`
	Result  []Zone       `json:"result"`
}

type recordsResponse struct {
	Success bool         `json:"success"`
	Errors  []apiMessage `json:"errors"`
	Result  []Record     `json:"result"`
}

type recordResponse struct {
	Success bool         `json:"success"`
	Errors  []apiMessage `json:"errors"`
	Result  Record       `json:"result"`
}
