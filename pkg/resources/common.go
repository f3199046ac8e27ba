package resources

// Email is a categorized email address.
type Email struct {
	Email    string `json:"email"`
	Category string `json:"category,omitempty"`
}

// PhoneNumber is a categorized phone number.
type PhoneNumber struct {
	Number   string `json:"number"`
	Category string `json:"category,omitempty"`
}

// Website is a categorized URL.
type Website struct {
	URL      string `json:"url"`
	Category string `json:"category,omitempty"`
}

// Social is a categorized social profile URL.
type Social struct {
	URL      string `json:"url"`
	Category string `json:"category,omitempty"`
}

// Address is a postal address.
type Address struct {
	Street     string `json:"street,omitempty"`
	City       string `json:"city,omitempty"`
	State      string `json:"state,omitempty"`
	PostalCode string `json:"postal_code,omitempty"`
	Country    string `json:"country,omitempty"`
}
