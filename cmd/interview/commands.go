package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/kiranshivaraju/mockview/internal/client"
	"github.com/kiranshivaraju/mockview/internal/interview"
	"github.com/kiranshivaraju/mockview/pkg/models"
)

func (a *app) register(ctx context.Context, args []string) error {
	fs := a.flagSet("register")
	name := fs.String("name", "", "display name")
	email := fs.String("email", "", "email address (required)")
	image := fs.String("image-url", "", "avatar URL")
	keyName := fs.String("key-name", "", "label for the new API key")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *email == "" {
		return fmt.Errorf("%w: --email is required", errUsage)
	}

	reg, err := a.api.Register(ctx, client.RegisterRequest{
		Name:     *name,
		Email:    *email,
		ImageURL: *image,
		KeyName:  *keyName,
	})
	if err != nil {
		return describe(err)
	}

	if reg.Created {
		fmt.Fprintf(a.out, "Welcome, %s. Your account was created.\n", displayName(reg.User))
	} else {
		fmt.Fprintf(a.out, "Welcome back, %s.\n", displayName(reg.User))
	}
	fmt.Fprintf(a.out, "User ID: %s\n", reg.User.ID)
	fmt.Fprintf(a.out, "API key: %s\n", reg.APIKey)
	fmt.Fprintln(a.out, "Store this key now; it will not be shown again.")
	return nil
}

func (a *app) create(ctx context.Context, args []string) error {
	fs := a.flagSet("create")
	typ := fs.String("type", string(models.InterviewTypeJobDescription), "job-description or resume")
	title := fs.String("title", "", "job title")
	desc := fs.String("description", "", "job description")
	resumeURL := fs.String("resume-url", "", "resume location (resume interviews)")
	skills := fs.String("skills", "", "comma separated skills (resume interviews)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	iv, err := a.api.CreateInterview(ctx, interview.CreateRequest{
		Type:        models.InterviewType(*typ),
		Title:       *title,
		Description: *desc,
		ResumeURL:   *resumeURL,
		Skills:      *skills,
	})
	if err != nil {
		return describe(err)
	}

	fmt.Fprintf(a.out, "Created %q with %d questions.\n", iv.Title, len(iv.Questions))
	fmt.Fprintf(a.out, "Interview ID: %s\n", iv.ID)
	fmt.Fprintf(a.out, "Start it with: interview run %s\n", iv.ID)
	return nil
}

func (a *app) list(ctx context.Context, args []string) error {
	fs := a.flagSet("list")
	page := fs.Int("page", 1, "page number")
	limit := fs.Int("limit", 20, "interviews per page")
	if err := fs.Parse(args); err != nil {
		return err
	}

	res, err := a.api.ListInterviews(ctx, *page, *limit)
	if err != nil {
		return describe(err)
	}
	if len(res.Interviews) == 0 {
		fmt.Fprintln(a.out, "No interviews yet. Create one with: interview create")
		return nil
	}

	tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tTYPE\tSTATUS\tANSWERED\tRATING\tCREATED")
	for _, iv := range res.Interviews {
		rating := "-"
		if iv.Feedback != nil {
			rating = fmt.Sprintf("%d/10", iv.Feedback.Rating)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d/%d\t%s\t%s\n",
			iv.ID, iv.Title, iv.Type, iv.Status,
			iv.AnsweredCount(), len(iv.Questions), rating,
			iv.CreatedAt.Local().Format("2006-01-02 15:04"))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	m := res.Meta
	fmt.Fprintf(a.out, "Page %d, %d of %d interviews.", m.Page, len(res.Interviews), m.Total)
	if m.HasNext {
		fmt.Fprintf(a.out, " Next: interview list --page %d", m.Page+1)
	}
	fmt.Fprintln(a.out)
	return nil
}

func (a *app) delete(ctx context.Context, args []string) error {
	fs := a.flagSet("delete")
	yes := fs.Bool("yes", false, "skip the confirmation prompt")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("%w: delete takes exactly one interview id", errUsage)
	}
	id, err := parseID(fs.Arg(0))
	if err != nil {
		return err
	}

	if !*yes && !a.confirm(fmt.Sprintf("Delete interview %s? This cannot be undone.", id)) {
		fmt.Fprintln(a.out, "Cancelled.")
		return nil
	}
	if err := a.api.DeleteInterview(ctx, id); err != nil {
		return describe(err)
	}
	fmt.Fprintln(a.out, "Interview deleted.")
	return nil
}

func (a *app) bulkDelete(ctx context.Context, args []string) error {
	fs := a.flagSet("bulk-delete")
	yes := fs.Bool("yes", false, "skip the confirmation prompt")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return fmt.Errorf("%w: bulk-delete needs at least one interview id", errUsage)
	}
	ids := make([]uuid.UUID, 0, fs.NArg())
	for _, raw := range fs.Args() {
		id, err := parseID(raw)
		if err != nil {
			return err
		}
		ids = append(ids, id)
	}

	if !*yes && !a.confirm(fmt.Sprintf("Delete %d interviews? This cannot be undone.", len(ids))) {
		fmt.Fprintln(a.out, "Cancelled.")
		return nil
	}
	n, err := a.api.BulkDelete(ctx, ids)
	if err != nil {
		return describe(err)
	}
	fmt.Fprintf(a.out, "Deleted %d interviews.\n", n)
	return nil
}

// confirm asks a y/N question on the input. Anything but y or yes is a no.
func (a *app) confirm(question string) bool {
	fmt.Fprintf(a.out, "%s [y/N] ", question)
	line, _ := bufio.NewReader(a.in).ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}

func parseID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %q is not an interview id", errUsage, raw)
	}
	return id, nil
}

func displayName(u models.User) string {
	if u.Name != "" {
		return u.Name
	}
	return u.Email
}

// describe turns API failures into messages for the terminal.
func describe(err error) error {
	var apiErr *client.APIError
	switch {
	case errors.Is(err, client.ErrUnreachable):
		return fmt.Errorf("cannot reach the API: %w", err)
	case errors.Is(err, client.ErrUnauthorized):
		return errors.New("the API key was rejected; run interview register for a new one")
	case errors.As(err, &apiErr) && len(apiErr.Details) > 0:
		var b strings.Builder
		b.WriteString(apiErr.Message)
		for _, field := range slices.Sorted(maps.Keys(apiErr.Details)) {
			fmt.Fprintf(&b, "\n  %s: %s", field, apiErr.Details[field])
		}
		return errors.New(b.String())
	case errors.As(err, &apiErr) && apiErr.Message != "":
		return errors.New(apiErr.Message)
	default:
		return err
	}
}
