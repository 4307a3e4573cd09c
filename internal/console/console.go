package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"event-banner/internal/banner"
	"event-banner/internal/models"
)

// Console is the interactive terminal front end of the banner
type Console struct {
	banner  *banner.Banner
	scanner *bufio.Scanner
	out     io.Writer
}

// New creates a console reading commands from in and writing to out
func New(b *banner.Banner, in io.Reader, out io.Writer) *Console {
	return &Console{
		banner:  b,
		scanner: bufio.NewScanner(in),
		out:     out,
	}
}

// Run shows the menu until the user exits, input ends or ctx is cancelled
func (c *Console) Run(ctx context.Context) {
	for ctx.Err() == nil {
		fmt.Fprintln(c.out, "\nCommands:")
		fmt.Fprintln(c.out, "  1. RSVP")
		fmt.Fprintln(c.out, "  2. View guest list")
		fmt.Fprintln(c.out, "  3. Clear all guests")
		fmt.Fprintln(c.out, "  4. Show countdown")
		fmt.Fprintln(c.out, "  5. Exit")
		fmt.Fprint(c.out, "\nEnter command (1-5): ")

		if !c.scanner.Scan() {
			return
		}

		switch strings.TrimSpace(c.scanner.Text()) {
		case "1":
			c.rsvp(ctx)
		case "2":
			PrintGuests(c.out, c.banner.Guests(), c.banner.TotalGuests())
		case "3":
			c.clear(ctx)
		case "4":
			fmt.Fprintf(c.out, "\n⏳ %s\n", c.banner.Countdown())
		case "5":
			fmt.Fprintln(c.out, "Exiting...")
			return
		default:
			fmt.Fprintln(c.out, "Invalid command. Please try again.")
		}
	}
}

func (c *Console) rsvp(ctx context.Context) {
	form := c.banner.Form()

	name, ok := c.prompt("Enter guest name: ")
	if !ok {
		return
	}
	form.Name = name

	count, ok := c.prompt("Enter number of guests: ")
	if !ok {
		return
	}
	form.NumberOfGuests, _ = strconv.Atoi(count)

	if c.banner.Snapshot().ContactFields {
		kind, ok := c.prompt("Contact by (email/phone): ")
		if !ok {
			return
		}
		form.ContactType = models.ParseContactType(kind)

		value, ok := c.prompt(fmt.Sprintf("Enter %s: ", strings.ToLower(form.ContactType.Label())))
		if !ok {
			return
		}
		form.ContactValue = value
	}

	c.banner.SetForm(form)
	guest, err := c.banner.Submit(ctx)
	if err != nil {
		fmt.Fprintln(c.out, "❌ RSVP not saved.")
		return
	}
	fmt.Fprintf(c.out, "✅ Thank you, %s! Your RSVP for %d guest(s) is saved.\n", guest.Name, guest.NumberOfGuests)
}

func (c *Console) clear(ctx context.Context) {
	if err := c.banner.ClearAll(ctx); err != nil {
		fmt.Fprintf(c.out, "❌ Error clearing guest list: %v\n", err)
		return
	}
	fmt.Fprintln(c.out, "🗑️  Guest list cleared.")
}

func (c *Console) prompt(label string) (string, bool) {
	fmt.Fprint(c.out, label)
	if !c.scanner.Scan() {
		return "", false
	}
	return strings.TrimSpace(c.scanner.Text()), true
}

// PrintGuests writes the guest list in the same shape as the page's guest modal
func PrintGuests(out io.Writer, guests []models.Guest, total int) {
	if len(guests) == 0 {
		fmt.Fprintln(out, "\nNo guests found.")
		return
	}

	fmt.Fprintf(out, "\n📋 Guest List (%d entries, Total Guests: %d):\n", len(guests), total)
	fmt.Fprintln(out, strings.Repeat("-", 60))
	for _, guest := range guests {
		fmt.Fprintf(out, "[%s] %s\n", guest.Initial(), guest.Name)
		fmt.Fprintf(out, "%d guest(s)\n", guest.NumberOfGuests)
		if guest.ContactType != "" {
			fmt.Fprintf(out, "%s: %s\n", guest.ContactType.Label(), guest.ContactValue)
		}
		fmt.Fprintln(out, strings.Repeat("-", 60))
	}
}
