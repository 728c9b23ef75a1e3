package onboarding

// Conversation copy for the setup flow. Kept package-level so tests and the
// dispatcher can assert against the exact strings users see.
const (
	WelcomeMessage = "Karibu PichaSafi!\n\n" +
		"I'll help you create stunning marketing visuals for your business.\n\n" +
		"Let's set up your brand profile (takes 2 minutes).\n\n" +
		"What is your *business name*?"

	askLogo = "Now send me your *business logo* (as an image).\n\n" +
		"If you don't have one yet, type *skip*."

	askLocation = "Where is your business located?\n\n(e.g., Dar es Salaam, Arusha, Nairobi)"

	askContact = "What phone number should appear on your marketing materials?\n\n" +
		"(e.g., +255 712 345 678)"

	askColors = "Choose your brand's primary color:\n\n" +
		"1 - Orange (#FF6B00)\n" +
		"2 - Blue (#0066FF)\n" +
		"3 - Green (#00AA44)\n" +
		"4 - Red (#CC0000)\n" +
		"5 - Purple (#8800CC)\n" +
		"6 - Custom (send hex code like #FF6B00)\n\n" +
		"Reply with a number or hex code."

	askStyle = "Choose your design style:\n\n" +
		"1 - Modern (clean, minimal)\n" +
		"2 - Bold (high contrast, impactful)\n" +
		"3 - Elegant (refined, premium)\n\n" +
		"Reply with a number."

	repromptName     = "Please type your business name."
	repromptLogo     = "Please send your logo as an image, or type *skip*."
	repromptLocation = "Please type your business location."
	repromptContact  = "Please type a contact phone number."
	repromptColors   = "Please reply with a number (1-5) or a hex code (e.g., #FF6B00)."
	repromptStyle    = "Please reply with 1, 2, or 3."

	logoSaved      = "Logo saved!\n\n"
	logoSkipped    = "No worries! You can add a logo later.\n\n"
	logoUploadFail = "Sorry, couldn't save that image. Please try again or type *skip*."
)
