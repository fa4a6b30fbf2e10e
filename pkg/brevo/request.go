package brevo

// Contact is the body of POST /contacts.
type Contact struct {
	Email         string         `json:"email"`
	ListIDs       []int64        `json:"listIds,omitempty"`
	Attributes    map[string]any `json:"attributes,omitempty"`
	UpdateEnabled bool           `json:"updateEnabled"`
}

type Address struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email"`
}

// TransactionalEmail is the body of POST /smtp/email.
type TransactionalEmail struct {
	Sender      Address   `json:"sender"`
	To          []Address `json:"to"`
	Subject     string    `json:"subject"`
	HTMLContent string    `json:"htmlContent"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
