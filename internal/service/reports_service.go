package service

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	errorvalues "github.com/limbo/pulse/internal/error_values"
	"github.com/limbo/pulse/internal/repository"
	"github.com/limbo/pulse/pkg/entity"
)

const weeklyDays = 7

// ReportsService builds week/month/all-time views over persisted daily
// summaries. Read-only: it never touches workouts and runs outside the
// mutation transactions.
type ReportsService struct {
	usersRepo      repository.UsersRepositoryI
	activitiesRepo repository.ActivitiesRepositoryI
	loc            *time.Location
}

func NewReportsService(usersRepo repository.UsersRepositoryI, activitiesRepo repository.ActivitiesRepositoryI, loc *time.Location) *ReportsService {
	if usersRepo == nil || activitiesRepo == nil {
		log.Fatal("on reports service provided nil repos")
	}
	if loc == nil {
		loc = time.UTC
	}
	return &ReportsService{
		usersRepo:      usersRepo,
		activitiesRepo: activitiesRepo,
		loc:            loc,
	}
}

func (rs *ReportsService) Location() *time.Location {
	return rs.loc
}

func (rs *ReportsService) startOfDay(t time.Time) time.Time {
	local := t.In(rs.loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, rs.loc)
}

// Weekly returns exactly 7 entries covering [today-6, today], oldest first.
// Days without a stored row become zero placeholders. Percentage is the raw
// move progress from the row's own target snapshot, not capped at 100.
func (rs *ReportsService) Weekly(ctx context.Context, uid uuid.UUID) ([]entity.DailyReport, error) {
	today := rs.startOfDay(time.Now())
	from := today.AddDate(0, 0, -(weeklyDays - 1))
	to := today.AddDate(0, 0, 1)
	rows, err := rs.activitiesRepo.GetByUserAndDateRange(ctx, uid, from, to)
	if err != nil {
		return nil, errors.New("repository error: " + err.Error())
	}
	byDay := make(map[string]*entity.Activity, len(rows))
	for _, a := range rows {
		byDay[a.Date.In(rs.loc).Format(time.DateOnly)] = a
	}
	reports := make([]entity.DailyReport, 0, weeklyDays)
	for day := from; day.Before(to); day = day.AddDate(0, 0, 1) {
		report := entity.DailyReport{
			Day:  day.Format("Mon"),
			Date: day.Format(time.DateOnly),
		}
		if a, ok := byDay[report.Date]; ok {
			report.CaloriesBurned = a.Calories
			if a.MoveTarget > 0 {
				report.Percentage = float64(a.MoveMinutes) / float64(a.MoveTarget) * 100
			}
		}
		reports = append(reports, report)
	}
	return reports, nil
}

// Monthly returns the stored rows within (year, month). Missing days are the
// caller's concern, there is no gap-filling here.
func (rs *ReportsService) Monthly(ctx context.Context, uid uuid.UUID, year int, month time.Month) ([]*entity.Activity, error) {
	if month < time.January || month > time.December {
		return nil, errors.New("invalid month")
	}
	from := time.Date(year, month, 1, 0, 0, 0, 0, rs.loc)
	to := from.AddDate(0, 1, 0)
	rows, err := rs.activitiesRepo.GetByUserAndDateRange(ctx, uid, from, to)
	if err != nil {
		return nil, errors.New("repository error: " + err.Error())
	}
	return rows, nil
}

// Averages computes the all-time per-field means. Empty history yields zero
// averages. Targets are the user's current goals, not averaged snapshots.
func (rs *ReportsService) Averages(ctx context.Context, uid uuid.UUID) (*entity.ActivityAverages, error) {
	goals, err := rs.usersRepo.GetGoals(ctx, uid)
	if err != nil {
		if errors.Is(err, errorvalues.ErrUserNotFound) {
			return nil, errorvalues.ErrUserNotFound
		}
		return nil, errors.New("repository error: " + err.Error())
	}
	avg, err := rs.activitiesRepo.GetAverages(ctx, uid)
	if err != nil {
		return nil, errors.New("repository error: " + err.Error())
	}
	avg.MoveTarget = goals.Move
	avg.ExerciseTarget = goals.Exercise
	avg.StandTarget = goals.Stand
	return avg, nil
}

// DailyProgress maps one day's summary to capped ring percentages. A day
// without a summary row reads as zero progress, not as an error.
func (rs *ReportsService) DailyProgress(ctx context.Context, uid uuid.UUID, day time.Time) (*entity.DailyProgress, error) {
	start := rs.startOfDay(day)
	progress := &entity.DailyProgress{
		Date: start.Format(time.DateOnly),
	}
	a, err := rs.activitiesRepo.GetByUserAndDate(ctx, uid, start)
	if err != nil {
		if errors.Is(err, errorvalues.ErrActivityNotFound) {
			return progress, nil
		}
		return nil, errors.New("repository error: " + err.Error())
	}
	progress.MovePercentage = ProgressPercentage(float64(a.MoveMinutes), float64(a.MoveTarget))
	progress.ExercisePercentage = ProgressPercentage(a.ExerciseMinutes, float64(a.ExerciseTarget))
	progress.StandPercentage = ProgressPercentage(float64(a.StandHours), float64(a.StandTarget))
	return progress, nil
}
