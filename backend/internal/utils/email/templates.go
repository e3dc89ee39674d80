package email

import (
	"fmt"
	"time"
)

// UpdateLinkMessage is the mail carrying a presigned update link.
func UpdateLinkMessage(name, link string, ttl time.Duration) (subject, body string) {
	greeting := "Hello,"
	if name != "" {
		greeting = fmt.Sprintf("Hello %s,", name)
	}
	subject = "Update your information"
	body = fmt.Sprintf("%s\r\n\r\n"+
		"Someone, hopefully you, asked to update the details we have on file for this address.\r\n"+
		"Use the link below to review and change them. It works once and expires in %d hours.\r\n\r\n"+
		"%s\r\n\r\n"+
		"If you did not ask for this, you can ignore this message.\r\n",
		greeting, int(ttl.Hours()), link)
	return subject, body
}
