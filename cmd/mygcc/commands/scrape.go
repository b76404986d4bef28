package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"mygcc-backend/internal/config"
	"mygcc-backend/internal/extract"
	"mygcc-backend/internal/telemetry"
	"mygcc-backend/internal/token"
	"mygcc-backend/lib/serviceutil"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var (
	scrapeUsername string
	scrapePassword string
	scrapeDump     string
)

func init() {
	scrapeCmd.Flags().StringVarP(&scrapeUsername, "username", "u", "", "The portal username.")
	scrapeCmd.Flags().StringVarP(&scrapePassword, "password", "p", "", "The portal password.")
	scrapeCmd.Flags().StringVar(&scrapeDump, "dump", "", "A directory to dump every portal http message into.")
	scrapeCmd.MarkFlagRequired("username")
	scrapeCmd.MarkFlagRequired("password")
	rootCmd.AddCommand(scrapeCmd)
}

func NewTable() table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(os.Stdout)
	return t
}

type scrapeFunc func(ctx context.Context, e extract.Extractor, course string) error

var scrapers = map[string]scrapeFunc{
	"schedule":      scrapeSchedule,
	"homework":      scrapeHomework,
	"files":         scrapeFiles,
	"collaboration": scrapeCollaboration,
	"chapel":        scrapeChapel,
	"ccash":         scrapeCrimsonCash,
	"contact": func(ctx context.Context, e extract.Extractor, _ string) error {
		return printRecord(e.Contact(ctx))
	},
	"insurance": func(ctx context.Context, e extract.Extractor, _ string) error {
		return printRecord(e.Insurance(ctx))
	},
	"bio": func(ctx context.Context, e extract.Extractor, _ string) error {
		return printRecord(e.Biography(ctx))
	},
}

var courseResources = map[string]bool{
	"homework":      true,
	"files":         true,
	"collaboration": true,
}

var scrapeCmd = &cobra.Command{
	Use:   "scrape <resource> [course] --username <username> --password <password>",
	Short: "Logs into the portal and prints one resource.",
	Long:  "Resources: schedule, chapel, ccash, contact, insurance, bio, homework <course>, files <course>, collaboration <course>.",
	Args:  cobra.RangeArgs(1, 2),
	Run: func(cmd *cobra.Command, args []string) {
		resource := args[0]
		scrape, ok := scrapers[resource]
		if !ok {
			serviceutil.Fatal("scrape", fmt.Errorf("unknown resource '%s'", resource))
		}
		course := ""
		if courseResources[resource] {
			if len(args) < 2 {
				serviceutil.Fatal("scrape", fmt.Errorf("'%s' needs a course code", resource))
			}
			course = args[1]
		}

		cfg, err := config.Load(configPath)
		if err != nil {
			serviceutil.Fatal("load config", err)
		}
		client, err := newPortalClient(cfg, scrapeDump, telemetry.SlogAPI{})
		if err != nil {
			serviceutil.Fatal("init portal client", err)
		}

		ctx := cmd.Context()
		session := client.NewSession(token.Credential{
			Username: scrapeUsername,
			Password: scrapePassword,
		})
		err = session.Create(ctx)
		if err != nil {
			serviceutil.Fatal("login", err)
		}

		err = scrape(ctx, extract.New(session, telemetry.SlogAPI{}), course)
		if err != nil {
			serviceutil.Fatal("scrape "+resource, err)
		}
	},
}

func printRecord[T any](record T, err error) error {
	if err != nil {
		return err
	}
	out, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func scrapeSchedule(ctx context.Context, e extract.Extractor, _ string) error {
	courses, err := e.Schedule(ctx)
	if err != nil {
		return err
	}

	t := NewTable()
	t.AppendHeader(table.Row{"Code", "Name", "Credits", "Professors", "Times", "Locations"})
	for _, c := range courses {
		times := make([]string, len(c.Times))
		for i, mt := range c.Times {
			times[i] = fmt.Sprintf("%s %s-%s", mt.Day, mt.Start, mt.End)
		}
		t.AppendRow(table.Row{
			c.Code,
			c.ReadableTitle,
			c.Credits,
			strings.Join(c.Professors, "\n"),
			strings.Join(times, "\n"),
			strings.Join(c.Locations, "\n"),
		})
	}
	t.Render()
	return nil
}

func scrapeHomework(ctx context.Context, e extract.Extractor, course string) error {
	sections, err := e.Homework(ctx, course)
	if err != nil {
		return err
	}

	t := NewTable()
	t.AppendHeader(table.Row{"Section", "Assignment", "Due", "Grade", "Open"})
	for _, section := range sections {
		for _, a := range section.Assignments {
			grade := a.Grade.Percent
			if a.Grade.Received != "" {
				grade = fmt.Sprintf("%s/%s", a.Grade.Received, a.Grade.Points)
			}
			t.AppendRow(table.Row{section.Title, a.Title, a.Due, grade, a.Open})
		}
		t.AppendSeparator()
	}
	t.Render()
	return nil
}

func scrapeFiles(ctx context.Context, e extract.Extractor, course string) error {
	files, err := e.Files(ctx, course)
	if err != nil {
		return err
	}

	t := NewTable()
	t.AppendHeader(table.Row{"Name", "Type", "Size", "Url"})
	for _, f := range files {
		t.AppendRow(table.Row{f.Name, f.Type, f.Size, f.Url})
	}
	t.Render()
	return nil
}

func scrapeCollaboration(ctx context.Context, e extract.Extractor, course string) error {
	classmates, err := e.Collaboration(ctx, course)
	if err != nil {
		return err
	}

	t := NewTable()
	t.AppendHeader(table.Row{"Id", "Name", "Faculty"})
	for _, c := range classmates {
		t.AppendRow(table.Row{c.Id, c.Name, c.IsFaculty})
	}
	t.Render()
	return nil
}

func scrapeChapel(ctx context.Context, e extract.Extractor, _ string) error {
	chapel, err := e.Chapel(ctx)
	if err != nil {
		return err
	}

	t := NewTable()
	t.AppendHeader(table.Row{"Required", "Makeups", "Attended", "Remaining", "Special"})
	t.AppendRow(table.Row{chapel.Required, chapel.Makeups, chapel.Attended, chapel.Remaining, chapel.Special})
	t.Render()
	return nil
}

func scrapeCrimsonCash(ctx context.Context, e extract.Extractor, _ string) error {
	balance, err := e.CrimsonCash(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("$%.2f\n", balance.Balance)
	return nil
}
