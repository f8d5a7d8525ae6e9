package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"eventease/location"
	"eventease/model"
	"eventease/registration"
	"eventease/search"
)

func newFlags(name string) *flag.FlagSet {
	return flag.NewFlagSet(name, flag.ContinueOnError)
}

func signup(ctx context.Context, a *app, args []string) error {
	fs := newFlags("signup")
	name := fs.String("name", "", "full name")
	email := fs.String("email", "", "email")
	password := fs.String("password", "", "password")
	if err := fs.Parse(args); err != nil {
		return err
	}

	user, err := a.client.Signup(ctx, *name, *email, *password)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Welcome, %s. You are logged in as %s.\n", user.Name, user.Email)
	return nil
}

func login(ctx context.Context, a *app, args []string) error {
	fs := newFlags("login")
	email := fs.String("email", "", "email")
	password := fs.String("password", "", "password")
	if err := fs.Parse(args); err != nil {
		return err
	}

	user, err := a.client.Login(ctx, *email, *password)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Logged in as %s (%s).\n", user.Name, user.Role)
	return nil
}

func logout(_ context.Context, a *app, _ []string) error {
	if err := a.client.Logout(); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Logged out.")
	return nil
}

func whoami(ctx context.Context, a *app, _ []string) error {
	user, err := a.client.Me(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s <%s> role=%s\n", user.Name, user.Email, user.Role)
	if loc := a.client.Session().SelectedLocation; loc != nil {
		fmt.Fprintf(a.out, "location: %s, %s\n", loc.Name, loc.State)
	}
	return nil
}

func listEvents(ctx context.Context, a *app, args []string) error {
	fs := newFlags("events")
	var q model.EventQuery
	fs.StringVar(&q.Search, "search", "", "search on the server")
	fs.StringVar(&q.Category, "category", "", "category")
	fs.StringVar(&q.Type, "type", "", "event type")
	fs.IntVar(&q.Page, "page", 0, "page")
	fs.IntVar(&q.Limit, "limit", 0, "page size")
	local := fs.String("local", "", "filter the fetched page locally")
	if err := fs.Parse(args); err != nil {
		return err
	}

	events, total, err := a.client.ListEvents(ctx, q)
	if err != nil {
		return err
	}
	events = search.Filter(events, *local)
	if len(events) == 0 {
		fmt.Fprintln(a.out, "No events match your search.")
		return nil
	}

	w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tDATE\tLOCATION\tPRICE\tLEFT")
	for _, e := range events {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%.2f\t%d\n", e.Id, e.Title, e.Date, e.Location, e.Price, e.Remaining())
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%d shown, %d total\n", len(events), total)
	return nil
}

func showEvent(ctx context.Context, a *app, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: event ID")
	}
	e, err := a.client.GetEvent(ctx, args[0])
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s\n%s %s at %s, %s\n%s\nprice %.2f, %d of %d seats left\n",
		e.Title, e.Date, e.Time, e.Venue, e.Location, e.Description, e.Price, e.Remaining(), e.Capacity)
	if len(e.Tags) > 0 {
		fmt.Fprintf(a.out, "tags: %s\n", strings.Join(e.Tags, ", "))
	}
	return nil
}

// register walks the registration flow: entry guard, details, payment.
func register(ctx context.Context, a *app, args []string) error {
	fs := newFlags("register")
	eventId := fs.String("event", "", "event id")
	var d registration.Details
	fs.StringVar(&d.Attendee.Name, "name", "", "attendee name")
	fs.StringVar(&d.Attendee.Email, "email", "", "attendee email")
	fs.StringVar(&d.Attendee.Phone, "phone", "", "attendee phone, 10 digits")
	fs.IntVar(&d.NumberOfTickets, "tickets", 1, "number of tickets")
	fs.StringVar(&d.TicketType, "ticket-type", "", "ticket type")
	method := fs.String("method", "card", "payment method: card, upi, netbanking, wallet")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *eventId == "" {
		return errors.New("-event is required")
	}

	flow := registration.NewFlow(*eventId, a.client)
	state, err := flow.Start(ctx)
	if err != nil {
		fmt.Fprintf(a.out, "Could not check your registration (%v); continuing.\n", err)
	}
	if state == registration.AlreadyRegistered {
		fmt.Fprintln(a.out, "You are already registered for this event.")
		return nil
	}

	if err := flow.SubmitDetails(d); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Processing payment via %s...\n", *method)

	state, err = flow.ConfirmPayment(ctx, *method)
	switch state {
	case registration.Success:
		reg := flow.Registration()
		fmt.Fprintf(a.out, "Registered: %d ticket(s), total %.2f, reference %s\n",
			reg.NumberOfTickets, reg.TotalPrice, reg.PaymentReference)
	case registration.AlreadyRegistered:
		fmt.Fprintln(a.out, "You are already registered for this event.")
		return nil
	default:
		return fmt.Errorf("registration failed: %w", err)
	}

	select {
	case <-ctx.Done():
		return nil
	case <-time.After(flow.RedirectAfter()):
	}
	return myRegistrations(ctx, a, nil)
}

func myRegistrations(ctx context.Context, a *app, _ []string) error {
	regs, err := a.client.MyRegistrations(ctx)
	if err != nil {
		return err
	}
	if len(regs) == 0 {
		fmt.Fprintln(a.out, "You have no registrations yet.")
		return nil
	}

	w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tEVENT\tTICKETS\tTOTAL\tSTATUS")
	for _, r := range regs {
		fmt.Fprintf(w, "%s\t%s\t%d\t%.2f\t%s\n", r.Id, r.EventTitle, r.NumberOfTickets, r.TotalPrice, r.Status)
	}
	return w.Flush()
}

func cancelRegistration(ctx context.Context, a *app, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: cancel REGISTRATION_ID")
	}
	if err := a.client.CancelRegistration(ctx, args[0]); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Registration cancelled.")
	return nil
}

func chooseLocation(ctx context.Context, a *app, args []string) error {
	fs := newFlags("location")
	lat := fs.Float64("lat", 0, "latitude")
	lng := fs.Float64("lng", 0, "longitude")
	city := fs.String("city", "", "pick a city by name")
	list := fs.Bool("list", false, "list the known cities")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *list {
		for _, c := range location.Cities {
			fmt.Fprintf(a.out, "%s, %s\n", c.Name, c.State)
		}
		return nil
	}

	var chosen location.City
	switch {
	case *city != "":
		c, ok := location.ByName(*city)
		if !ok {
			return fmt.Errorf("unknown city %q, see location -list", *city)
		}
		chosen = c
	default:
		var provider location.Provider = location.Denied{}
		fs.Visit(func(f *flag.Flag) {
			if f.Name == "lat" || f.Name == "lng" {
				provider = location.Fixed{Lat: *lat, Lng: *lng}
			}
		})
		c, err := location.Resolve(ctx, provider)
		if errors.Is(err, location.ErrLocationUnavailable) {
			return errors.New("location unavailable, choose a city with -city")
		}
		if err != nil {
			return err
		}
		chosen = c
	}

	if err := a.client.SelectLocation(chosen); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Location set to %s, %s.\n", chosen.Name, chosen.State)
	return nil
}

func notifications(ctx context.Context, a *app, _ []string) error {
	notes, err := a.client.Notifications(ctx)
	if err != nil {
		return err
	}
	if len(notes) == 0 {
		fmt.Fprintln(a.out, "No notifications.")
		return nil
	}
	for _, n := range notes {
		mark := " "
		if !n.Read {
			mark = "*"
		}
		fmt.Fprintf(a.out, "%s %s  %s: %s\n", mark, n.CreatedAt.Local().Format("2006-01-02 15:04"), n.Subject, n.Message)
	}
	return nil
}

func subscribe(ctx context.Context, a *app, args []string) error {
	fs := newFlags("subscribe")
	email := fs.String("email", "", "email")
	if err := fs.Parse(args); err != nil {
		return err
	}
	sub, err := a.client.Subscribe(ctx, *email)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s is subscribed to the newsletter.\n", sub.Email)
	return nil
}
