package assistant

import (
	"fmt"
	"strings"
	"time"

	"github.com/smileynet/addressbook/internal/contact"
)

func commandTable() []command {
	return []command{
		{name: "hello", summary: "Greet the assistant.", run: hello},
		{name: "add", usage: "<name> <phone>", summary: "Add a contact or a phone to an existing contact.", run: addContact},
		{name: "change", usage: "<name> <old> <new>", summary: "Replace a phone number.", run: changeContact},
		{name: "phone", usage: "<name>", summary: "Show a contact's phone numbers.", run: showPhone},
		{name: "remove-phone", usage: "<name> <phone>", summary: "Remove a phone number.", run: removePhone},
		{name: "all", summary: "List all contacts.", run: showAll},
		{name: "delete", usage: "<name>", summary: "Delete a contact.", run: deleteContact},
		{name: "add-birthday", usage: "<name> <DD.MM.YYYY>", summary: "Set a contact's birthday.", run: addBirthday},
		{name: "show-birthday", usage: "<name>", summary: "Show a contact's birthday.", run: showBirthday},
		{name: "birthdays", summary: "List birthdays coming up soon.", run: birthdays},
		{name: "help", summary: "Show this list.", run: help},
		{name: "exit", aliases: []string{"close"}, summary: "Save and quit.", run: farewell, quit: true},
	}
}

func hello(_ *Assistant, _ []string) (string, error) {
	return "How can I help you?", nil
}

func farewell(_ *Assistant, _ []string) (string, error) {
	return Farewell, nil
}

func help(a *Assistant, _ []string) (string, error) {
	return a.Help(), nil
}

func addContact(a *Assistant, args []string) (string, error) {
	if len(args) < 2 {
		return "", needArgs("Please provide both name and phone number.")
	}
	name, phone := args[0], args[1]

	// Validate before touching the book so a bad number never leaves an
	// empty record behind.
	if _, err := contact.NewPhone(phone); err != nil {
		return "", err
	}

	if r, ok := a.book.Find(name); ok {
		if err := r.AddPhone(phone); err != nil {
			return "", err
		}
		return "Contact updated.", nil
	}

	r, err := contact.NewRecord(name)
	if err != nil {
		return "", err
	}
	if err := r.AddPhone(phone); err != nil {
		return "", err
	}
	a.book.Add(r)
	return "Contact added.", nil
}

func changeContact(a *Assistant, args []string) (string, error) {
	if len(args) < 3 {
		return "", needArgs("Please provide a name, old phone number, and new phone number.")
	}
	name, oldPhone, newPhone := args[0], args[1], args[2]

	r, ok := a.book.Find(name)
	if !ok {
		return fmt.Sprintf("Contact %s does not exist.", name), nil
	}
	changed, err := r.EditPhone(oldPhone, newPhone)
	if err != nil {
		return "", err
	}
	if !changed {
		return fmt.Sprintf("Old phone number '%s' not found for contact '%s'.", oldPhone, name), nil
	}
	return fmt.Sprintf("Phone number changed from %s to %s for %s.", oldPhone, newPhone, name), nil
}

func showPhone(a *Assistant, args []string) (string, error) {
	if len(args) < 1 {
		return "", needArgs("Please provide a name.")
	}
	name := args[0]

	r, ok := a.book.Find(name)
	if !ok || len(r.Phones()) == 0 {
		return fmt.Sprintf("No phone number found for %s.", name), nil
	}
	phones := r.Phones()
	parts := make([]string, len(phones))
	for i, p := range phones {
		parts[i] = p.String()
	}
	return fmt.Sprintf("%s's phone number(s): %s", name, strings.Join(parts, ", ")), nil
}

func removePhone(a *Assistant, args []string) (string, error) {
	if len(args) < 2 {
		return "", needArgs("Please provide a name and a phone number.")
	}
	name, phone := args[0], args[1]

	r, ok := a.book.Find(name)
	if !ok {
		return fmt.Sprintf("Contact %s does not exist.", name), nil
	}
	if !r.RemovePhone(phone) {
		return fmt.Sprintf("Phone number %s not found for %s.", phone, name), nil
	}
	return fmt.Sprintf("Phone number %s removed for %s.", phone, name), nil
}

func showAll(a *Assistant, _ []string) (string, error) {
	return a.book.String(), nil
}

func deleteContact(a *Assistant, args []string) (string, error) {
	if len(args) < 1 {
		return "", needArgs("Please provide a name.")
	}
	name := args[0]
	if !a.book.Delete(name) {
		return fmt.Sprintf("Contact %s not found.", name), nil
	}
	return fmt.Sprintf("Contact %s deleted.", name), nil
}

func addBirthday(a *Assistant, args []string) (string, error) {
	if len(args) < 2 {
		return "", needArgs("Please provide a name and a birthday (DD.MM.YYYY).")
	}
	name, birthday := args[0], args[1]

	r, ok := a.book.Find(name)
	if !ok {
		return fmt.Sprintf("Contact %s does not exist.", name), nil
	}
	if err := r.SetBirthday(birthday); err != nil {
		return "", err
	}
	return fmt.Sprintf("Birthday for %s added.", name), nil
}

func showBirthday(a *Assistant, args []string) (string, error) {
	if len(args) < 1 {
		return "", needArgs("Please provide a name.")
	}
	name := args[0]

	r, ok := a.book.Find(name)
	if !ok {
		return fmt.Sprintf("No birthday found for %s.", name), nil
	}
	b, ok := r.Birthday()
	if !ok {
		return fmt.Sprintf("No birthday found for %s.", name), nil
	}
	return fmt.Sprintf("%s's birthday is on %s.", name, b), nil
}

func birthdays(a *Assistant, _ []string) (string, error) {
	return FormatUpcoming(a.book.UpcomingBirthdays(a.now(), a.window), a.window), nil
}

// FormatUpcoming renders an upcoming-birthdays result for window.
func FormatUpcoming(ups []contact.Upcoming, window time.Duration) string {
	if len(ups) == 0 {
		return fmt.Sprintf("No upcoming birthdays in the %s.", describeWindow(window))
	}
	lines := make([]string, 0, len(ups)+1)
	lines = append(lines, "Upcoming birthdays:")
	for _, u := range ups {
		lines = append(lines, fmt.Sprintf("%s: %s", u.Name, u.DateString()))
	}
	return strings.Join(lines, "\n")
}

func describeWindow(window time.Duration) string {
	const day = 24 * time.Hour
	switch {
	case window == contact.DefaultWindow:
		return "next week"
	case window == day:
		return "next day"
	case window%day == 0:
		return fmt.Sprintf("next %d days", int(window/day))
	default:
		return fmt.Sprintf("next %s", window)
	}
}
