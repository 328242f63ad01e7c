package domain

// StatusStyle is a display hint for a server-owned business status. The
// upstream is the sole authority on statuses and their transitions; the
// gateway only hands these palettes to front-ends so labels and colours stay
// consistent across dashboards.
type StatusStyle struct {
	Label string `json:"label"`
	Color string `json:"color"`
}

// StatusStyles groups the display palettes by resource.
type StatusStyles struct {
	Lead     map[string]StatusStyle `json:"lead"`
	Order    map[string]StatusStyle `json:"order"`
	Document map[string]StatusStyle `json:"document"`
	Approval map[string]StatusStyle `json:"approval"`
}

// DisplayStatusStyles returns the full palette set.
func DisplayStatusStyles() StatusStyles {
	return StatusStyles{
		Lead: map[string]StatusStyle{
			"new":             {Label: "New", Color: "blue"},
			"contacted":       {Label: "Contacted", Color: "cyan"},
			"quoted":          {Label: "Quoted", Color: "purple"},
			"sample_sent":     {Label: "Sample Sent", Color: "orange"},
			"order_confirmed": {Label: "Order Confirmed", Color: "green"},
			"closed":          {Label: "Closed", Color: "gray"},
		},
		Order: map[string]StatusStyle{
			"pending":       {Label: "Pending", Color: "yellow"},
			"in_production": {Label: "In Production", Color: "blue"},
			"quality_check": {Label: "Quality Check", Color: "purple"},
			"shipped":       {Label: "Shipped", Color: "cyan"},
			"delivered":     {Label: "Delivered", Color: "green"},
			"cancelled":     {Label: "Cancelled", Color: "red"},
		},
		Document: map[string]StatusStyle{
			"draft":  {Label: "Draft", Color: "gray"},
			"issued": {Label: "Issued", Color: "blue"},
			"sent":   {Label: "Sent", Color: "green"},
		},
		Approval: map[string]StatusStyle{
			"pending":  {Label: "Pending", Color: "yellow"},
			"approved": {Label: "Approved", Color: "green"},
			"rejected": {Label: "Rejected", Color: "red"},
		},
	}
}
