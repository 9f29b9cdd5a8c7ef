// Package testdata fills a project with a plausible robotics team for demos
// and manual testing.
package testdata

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/jask/projdesk/internal/database/repository"
	"github.com/jask/projdesk/internal/service"
)

// Services bundles the writers used by Seed.
type Services struct {
	Members    *service.MemberService
	Subsystems *service.SubsystemService
	Tasks      *service.TaskService
}

// Summary counts what Seed created.
type Summary struct {
	Members    int
	Subsystems int
	Tasks      int
}

var team = []repository.Member{
	{Username: "ada", FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com", Leader: true},
	{Username: "grace", FirstName: "Grace", LastName: "Hopper", Email: "grace@example.com"},
	{Username: "alan", FirstName: "Alan", LastName: "Turing"},
	{Username: "katherine", FirstName: "Katherine", LastName: "Johnson"},
}

var plan = []struct {
	name  string
	desc  string
	tasks []string
}{
	{"Drivetrain", "swerve modules and gearboxes", []string{"Mount motors", "Wire encoders", "Tune PID"}},
	{"Intake", "ground pickup", []string{"Cut side plates", "Print rollers"}},
	{"Shooter", "flywheel and hood", []string{"Balance flywheel", "Characterise hood angle", "Mount limelight"}},
	{"Climber", "end game hooks", []string{"Spring test"}},
	{"Electrical", "PDH, radio and CAN bus", []string{"Label CAN IDs", "Crimp battery leads"}},
}

// Seed adds the sample team, subsystems and tasks to projectID. The same
// seed yields the same progress figures and dates relative to now.
func Seed(ctx context.Context, svc Services, projectID string, now time.Time, seed uint64) (Summary, error) {
	rng := rand.New(rand.NewPCG(seed, seed))
	var sum Summary

	var ids []string
	for _, m := range team {
		m.ProjectID = projectID
		saved, err := svc.Members.Save(ctx, m)
		if err != nil {
			return sum, fmt.Errorf("member %s: %w", m.Username, err)
		}
		ids = append(ids, saved.ID)
		sum.Members++
	}

	day := now.UTC().Truncate(24 * time.Hour)
	for i, p := range plan {
		owner := ids[i%len(ids)]
		sub, err := svc.Subsystems.Save(ctx, repository.Subsystem{
			ProjectID:           projectID,
			Name:                p.name,
			Description:         p.desc,
			Status:              service.Statuses[rng.IntN(len(service.Statuses))],
			ResponsibleMemberID: &owner,
		})
		if err != nil {
			return sum, fmt.Errorf("subsystem %s: %w", p.name, err)
		}
		sum.Subsystems++

		for _, title := range p.tasks {
			start := day.AddDate(0, 0, -rng.IntN(14))
			end := start.AddDate(0, 0, 3+rng.IntN(21))
			_, err := svc.Tasks.Save(ctx, repository.Task{
				ProjectID:   projectID,
				SubsystemID: sub.ID,
				Title:       title,
				Priority:    service.Priorities[rng.IntN(len(service.Priorities))],
				Progress:    rng.IntN(5) * 25,
				StartDate:   &start,
				EndDate:     &end,
			})
			if err != nil {
				return sum, fmt.Errorf("task %s: %w", title, err)
			}
			sum.Tasks++
		}
	}
	return sum, nil
}
