package api

// Validate checks the article's domain invariants. Slug uniqueness is
// a store concern; a conflicting insert is reported separately.
func (a *Article) Validate() ValidationErrors {
	errs := ValidationErrors{}
	if a.Title == "" {
		errs.Add("title", MsgBlank)
	}
	if a.Content == "" {
		errs.Add("content", MsgBlank)
	}
	if a.Slug == "" {
		errs.Add("slug", MsgBlank)
	}
	return errs
}

// Validate checks the comment's domain invariants.
func (c *Comment) Validate() ValidationErrors {
	errs := ValidationErrors{}
	if c.Content == "" {
		errs.Add("content", MsgBlank)
	}
	return errs
}

// ValidateRegistration checks a standard registration request before
// the password is hashed.
func ValidateRegistration(login, password string) ValidationErrors {
	errs := ValidationErrors{}
	if login == "" {
		errs.Add("login", MsgBlank)
	}
	if password == "" {
		errs.Add("password", MsgBlank)
	}
	return errs
}
