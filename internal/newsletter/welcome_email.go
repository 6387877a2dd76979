package newsletter

//go:generate templ generate -f welcome_email.templ

const (
	welcomeSubject = "Welcome to the newsletter!"
	welcomeTag     = "newsletter_welcome"
)

// WelcomeEmailProps fills the welcome email.
type WelcomeEmailProps struct {
	FirstName string
	FromEmail string
	SiteURL   string
}

func greeting(firstName string) string {
	if firstName == "" {
		return "Hi there,"
	}
	return "Hi " + firstName + ","
}
