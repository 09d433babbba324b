package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/odyssey-erp/teamhub/internal/app"
	"github.com/odyssey-erp/teamhub/internal/calendar"
	"github.com/odyssey-erp/teamhub/internal/polls"
	"github.com/odyssey-erp/teamhub/internal/projects"
	"github.com/odyssey-erp/teamhub/internal/rbac"
	"github.com/odyssey-erp/teamhub/internal/shared"
	"github.com/odyssey-erp/teamhub/internal/tasks"
	"github.com/odyssey-erp/teamhub/internal/users"
)

// demoPassword is shared by every seeded account.
const demoPassword = "teamhub123"

type member struct {
	username string
	fullName string
	role     rbac.Role
}

var staff = []member{
	{"maya", "Maya Lopez", rbac.RoleManager},
	{"theo", "Theo Park", rbac.RoleTeamLead},
	{"ines", "Ines Okafor", rbac.RoleEmployee},
	{"ravi", "Ravi Menon", rbac.RoleIntern},
}

func main() {
	ctx := context.Background()
	cfg, err := app.LoadConfig()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if cfg.DocstoreDriver == app.DriverMemory {
		log.Fatal("seeding the memory driver is pointless, set DOCSTORE_DRIVER to redis or postgres")
	}
	logger := app.NewLogger(cfg)
	backends, err := app.OpenBackends(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("open backends: %v", err)
	}
	defer backends.Close()

	c, err := app.NewContainer(app.Deps{Config: cfg, Logger: logger, Store: backends.Store, Alerter: backends.Alerter})
	if err != nil {
		log.Fatalf("wire services: %v", err)
	}

	fmt.Println("→ Seeding company...")
	code, err := seedCompany(ctx, c)
	if err != nil {
		log.Fatalf("seed company: %v", err)
	}

	fmt.Println("→ Seeding tasks...")
	if err := seedTasks(ctx, c); err != nil {
		log.Fatalf("seed tasks: %v", err)
	}

	fmt.Println("→ Seeding collaboration...")
	if err := seedCollaboration(ctx, c, code); err != nil {
		log.Fatalf("seed collaboration: %v", err)
	}

	fmt.Println("✓ Seed complete at", time.Now().Format(time.RFC3339), "company", code)
}

func seedCompany(ctx context.Context, c *app.Container) (string, error) {
	if _, err := c.Users.Register(ctx, users.RegisterInput{
		Username: "owner",
		Password: demoPassword,
		Email:    "owner@teamhub.local",
		FullName: "Olivia Owner",
	}); err != nil && !errors.Is(err, shared.ErrAlreadyExists) {
		return "", err
	}
	company, err := c.Companies.CompanyOf(ctx, "owner")
	if errors.Is(err, shared.ErrNotFound) {
		company, err = c.Companies.Create(ctx, "Northwind Studio", "Demo workspace", "owner")
	}
	if err != nil {
		return "", err
	}

	for _, m := range staff {
		_, err := c.Users.Register(ctx, users.RegisterInput{
			Username:    m.username,
			Password:    demoPassword,
			Email:       m.username + "@teamhub.local",
			FullName:    m.fullName,
			CompanyCode: company.Code,
		})
		if err != nil && !errors.Is(err, shared.ErrAlreadyExists) {
			return "", err
		}
		if err := c.Companies.ChangeRole(ctx, company.Code, m.username, string(m.role), "owner"); err != nil {
			return "", fmt.Errorf("role for %s: %w", m.username, err)
		}
	}
	return company.Code, nil
}

func seedTasks(ctx context.Context, c *app.Container) error {
	if _, err := c.Tasks.Create(ctx, "ines", tasks.Input{Title: "Draft onboarding checklist", Priority: "medium"}); err != nil {
		return err
	}
	_, err := c.Tasks.Assign(ctx, "maya", "ines", tasks.Input{
		Title:    "Prepare sprint demo",
		Priority: "high",
		DueDate:  time.Now().AddDate(0, 0, 7).Format(time.DateOnly),
	})
	return err
}

func seedCollaboration(ctx context.Context, c *app.Container, code string) error {
	if _, err := c.Chat.Send(ctx, code, "owner", "Welcome to the team workspace!", "text"); err != nil {
		return err
	}
	start := time.Now().Add(24 * time.Hour).Truncate(time.Hour)
	if _, err := c.Calendar.CreateEvent(ctx, code, "maya", calendar.Input{
		Title:     "Sprint planning",
		StartDate: start,
		EndDate:   start.Add(time.Hour),
		Attendees: []string{"theo", "ines"},
	}); err != nil {
		return err
	}
	if _, err := c.Polls.Create(ctx, code, "theo", polls.Input{
		Question: "Which day works for the retro?",
		Options:  []string{"Thursday", "Friday"},
	}); err != nil {
		return err
	}
	_, err := c.Projects.Create(ctx, code, "owner", projects.Input{
		Name:           "Website relaunch",
		StartDate:      time.Now().Format(time.DateOnly),
		Budget:         25000,
		ProjectManager: "maya",
		TeamMembers:    []string{"maya", "theo", "ines"},
	})
	return err
}
