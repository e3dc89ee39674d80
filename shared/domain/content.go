package domain

type ContentType = string

const (
	ContentMarkdown ContentType = "markdown"
	ContentYAML     ContentType = "yaml"
	ContentJSON     ContentType = "json"
)

// Section is one CMS block of a page, addressed by its sub key.
type Section struct {
	Type ContentType `json:"type"`
	Raw  string      `json:"raw"`
	HTML string      `json:"html,omitempty"` // sanitised rendering of markdown sections
	Data any         `json:"data,omitempty"` // parsed yaml/json sections; nil when unparsable
}

// StatusContent holds the texts shown once the get-involved form is done.
type StatusContent struct {
	SignUpTitle   string `json:"signUpTitle"`
	SignUpBody    string `json:"signUpBody"`
	UpdateTitle   string `json:"updateTitle"`
	UpdateBody    string `json:"updateBody"`
	LinkSentTitle string `json:"linkSentTitle"`
	LinkSentBody  string `json:"linkSentBody"`
}

var DefaultStatusContent = StatusContent{
	SignUpTitle: "Thank You for Signing Up",
	SignUpBody: "We're excited to have you in our coalition and to work with you in advocating for American Democracy and Jewish Security. " +
		"Our semi-regular newsletter will find its way to you soon, and in the mean time we invite you to join our WhatsApp Group.",
	UpdateTitle: "Your Info Has Been Updated",
	UpdateBody: "Your information has been saved successfully. Thank you for keeping your details up to date. " +
		"If you aren't already part of our WhatsApp group, we invite you to join.",
	LinkSentTitle: "Check Your Inbox",
	LinkSentBody:  "We found your existing record and have sent a link to update your information. Please check your email or phone for the update link.",
}

// ContentRow is one stored CMS block before parsing.
type ContentRow struct {
	Page    string
	Sub     string
	Type    string
	Content string
}
