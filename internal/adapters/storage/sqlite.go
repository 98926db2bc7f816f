// Package storage is the SQLite-backed catalog of learners, coaches,
// courses and training sessions.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3" // sqlite3 driver

	"github.com/okian/coachmatch/internal/domain/model"
	"github.com/okian/coachmatch/pkg/logger"
	"github.com/okian/coachmatch/pkg/metrics"
)

const schema = `
CREATE TABLE IF NOT EXISTS learners (
  id TEXT PRIMARY KEY,
  full_name TEXT NOT NULL DEFAULT '',
  fitness_level TEXT NOT NULL DEFAULT '',
  training_goals TEXT NOT NULL DEFAULT '',
  preferred_categories_json TEXT NOT NULL DEFAULT '[]',
  health_notes TEXT NOT NULL DEFAULT ''
);
CREATE TABLE IF NOT EXISTS coaches (
  id TEXT PRIMARY KEY,
  full_name TEXT NOT NULL DEFAULT '',
  bio TEXT NOT NULL DEFAULT '',
  years_of_experience INTEGER NOT NULL DEFAULT 0,
  rating REAL,
  hourly_rate REAL NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS coach_specialties (
  coach_id TEXT NOT NULL REFERENCES coaches(id) ON DELETE CASCADE,
  category_id INTEGER NOT NULL,
  detail TEXT NOT NULL DEFAULT '',
  experience_years INTEGER NOT NULL DEFAULT 0,
  PRIMARY KEY (coach_id, category_id)
);
CREATE TABLE IF NOT EXISTS courses (
  id TEXT PRIMARY KEY,
  coach_id TEXT NOT NULL DEFAULT '',
  category_id INTEGER NOT NULL DEFAULT 0,
  title TEXT NOT NULL DEFAULT '',
  description TEXT NOT NULL DEFAULT '',
  difficulty_level TEXT NOT NULL DEFAULT 'all'
);
CREATE TABLE IF NOT EXISTS sessions (
  id TEXT PRIMARY KEY,
  learner_id TEXT NOT NULL,
  course_id TEXT NOT NULL DEFAULT '',
  coach_id TEXT NOT NULL DEFAULT '',
  category_id INTEGER NOT NULL DEFAULT 0,
  category_name TEXT NOT NULL DEFAULT '',
  training_date TEXT NOT NULL,
  duration_minutes REAL NOT NULL DEFAULT 0,
  metrics_json TEXT NOT NULL DEFAULT '{}',
  achievements_json TEXT NOT NULL DEFAULT '[]'
);
CREATE INDEX IF NOT EXISTS idx_sessions_learner_date ON sessions(learner_id, training_date);
CREATE INDEX IF NOT EXISTS idx_courses_coach ON courses(coach_id);
`

// Catalog reads and writes marketplace records in SQLite.
type Catalog struct {
	db     *sql.DB
	logger logger.Logger
}

// Open opens the database at path. Use ":memory:" for a throwaway catalog.
func Open(ctx context.Context, path string, opts ...Option) (*Catalog, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	// sqlite allows one writer; a single connection also keeps ":memory:" databases whole.
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{`PRAGMA journal_mode=WAL;`, `PRAGMA foreign_keys=ON;`} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("%s: %w", pragma, err)
		}
	}
	c := &Catalog{db: db}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = logger.Get().Named("storage")
	}
	return c, nil
}

// Close closes the database.
func (c *Catalog) Close() error { return c.db.Close() }

// EnsureSchema creates the tables and indexes when missing.
func (c *Catalog) EnsureSchema(ctx context.Context) error {
	if _, err := c.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// Stats reports row counts per table and publishes them as gauges.
func (c *Catalog) Stats(ctx context.Context) (map[string]int, error) {
	out := make(map[string]int, 4)
	for _, table := range []string{"learners", "coaches", "courses", "sessions"} {
		var n int
		if err := c.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM `+table).Scan(&n); err != nil { //nolint:gosec // table names are constants
			return nil, fmt.Errorf("count %s: %w", table, err)
		}
		out[table] = n
		metrics.UpdateCatalogRecords(table, n)
	}
	return out, nil
}

// UpsertLearners inserts or replaces learners.
func (c *Catalog) UpsertLearners(ctx context.Context, learners []model.LearnerProfile) error {
	defer observe("upsert_learners", time.Now())
	return c.inTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
INSERT OR REPLACE INTO learners
(id, full_name, fitness_level, training_goals, preferred_categories_json, health_notes)
VALUES (?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for i := range learners {
			l := &learners[i]
			prefs, err := encodeJSON(l.PreferredCategories, "[]")
			if err != nil {
				return fmt.Errorf("learner %s: %w", l.ID, err)
			}
			if _, err := stmt.ExecContext(ctx, l.ID, l.FullName, string(l.FitnessLevel), l.TrainingGoals, prefs, l.HealthNotes); err != nil {
				return fmt.Errorf("learner %s: %w", l.ID, err)
			}
		}
		return nil
	})
}

// UpsertCoaches inserts or replaces coaches together with their specialties.
func (c *Catalog) UpsertCoaches(ctx context.Context, coaches []model.CoachProfile) error {
	defer observe("upsert_coaches", time.Now())
	return c.inTx(ctx, func(tx *sql.Tx) error {
		coachStmt, err := tx.PrepareContext(ctx, `
INSERT INTO coaches (id, full_name, bio, years_of_experience, rating, hourly_rate)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
  full_name = excluded.full_name,
  bio = excluded.bio,
  years_of_experience = excluded.years_of_experience,
  rating = excluded.rating,
  hourly_rate = excluded.hourly_rate`)
		if err != nil {
			return err
		}
		defer coachStmt.Close()

		specStmt, err := tx.PrepareContext(ctx, `
INSERT OR REPLACE INTO coach_specialties (coach_id, category_id, detail, experience_years)
VALUES (?, ?, ?, ?)`)
		if err != nil {
			return err
		}
		defer specStmt.Close()

		for i := range coaches {
			co := &coaches[i]
			var rating sql.NullFloat64
			if co.Rating != nil {
				rating = sql.NullFloat64{Float64: *co.Rating, Valid: true}
			}
			if _, err := coachStmt.ExecContext(ctx, co.ID, co.FullName, co.Bio, co.YearsOfExperience, rating, co.HourlyRate); err != nil {
				return fmt.Errorf("coach %s: %w", co.ID, err)
			}
			if _, err := tx.ExecContext(ctx, `DELETE FROM coach_specialties WHERE coach_id = ?`, co.ID); err != nil {
				return fmt.Errorf("coach %s specialties: %w", co.ID, err)
			}
			for _, s := range co.Specialties {
				if _, err := specStmt.ExecContext(ctx, co.ID, s.CategoryID, s.Detail, s.ExperienceYears); err != nil {
					return fmt.Errorf("coach %s specialty %d: %w", co.ID, s.CategoryID, err)
				}
			}
		}
		return nil
	})
}

// UpsertCourses inserts or replaces courses.
func (c *Catalog) UpsertCourses(ctx context.Context, courses []model.Course) error {
	defer observe("upsert_courses", time.Now())
	return c.inTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
INSERT OR REPLACE INTO courses (id, coach_id, category_id, title, description, difficulty_level)
VALUES (?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for i := range courses {
			co := &courses[i]
			difficulty := co.DifficultyLevel.Normalize()
			if difficulty == "" {
				difficulty = model.DifficultyAll
			}
			if _, err := stmt.ExecContext(ctx, co.ID, co.CoachID, co.CategoryID, co.Title, co.Description, string(difficulty)); err != nil {
				return fmt.Errorf("course %s: %w", co.ID, err)
			}
		}
		return nil
	})
}

// UpsertSessions inserts or replaces sessions. Metrics are stored as a JSON
// object and achievements as a JSON array.
func (c *Catalog) UpsertSessions(ctx context.Context, sessions []model.Session) error {
	defer observe("upsert_sessions", time.Now())
	return c.inTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
INSERT OR REPLACE INTO sessions
(id, learner_id, course_id, coach_id, category_id, category_name, training_date, duration_minutes, metrics_json, achievements_json)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for i := range sessions {
			s := &sessions[i]
			m, err := encodeJSON(s.Metrics, "{}")
			if err != nil {
				return fmt.Errorf("session %s metrics: %w", s.ID, err)
			}
			a, err := encodeJSON(s.Achievements, "[]")
			if err != nil {
				return fmt.Errorf("session %s achievements: %w", s.ID, err)
			}
			if _, err := stmt.ExecContext(ctx,
				s.ID, s.LearnerID, s.CourseID, s.CoachID, s.CategoryID, s.CategoryName,
				s.TrainingDate.String(), s.DurationMinutes, m, a,
			); err != nil {
				return fmt.Errorf("session %s: %w", s.ID, err)
			}
		}
		return nil
	})
}

// GetLearner returns the learner with id or ErrNotFound.
func (c *Catalog) GetLearner(ctx context.Context, id string) (model.LearnerProfile, error) {
	defer observe("get_learner", time.Now())
	var (
		l     model.LearnerProfile
		level string
		prefs string
	)
	err := c.db.QueryRowContext(ctx, `
SELECT id, full_name, fitness_level, training_goals, preferred_categories_json, health_notes
FROM learners WHERE id = ?`, id).Scan(&l.ID, &l.FullName, &level, &l.TrainingGoals, &prefs, &l.HealthNotes)
	if errors.Is(err, sql.ErrNoRows) {
		return model.LearnerProfile{}, fmt.Errorf("learner %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return model.LearnerProfile{}, fmt.Errorf("get learner %s: %w", id, err)
	}
	l.FitnessLevel = model.FitnessLevel(level)
	l.PreferredCategories = decodeInts(prefs)
	return l, nil
}

// ListLearners returns every learner ordered by id.
func (c *Catalog) ListLearners(ctx context.Context) ([]model.LearnerProfile, error) {
	defer observe("list_learners", time.Now())
	rows, err := c.db.QueryContext(ctx, `
SELECT id, full_name, fitness_level, training_goals, preferred_categories_json, health_notes
FROM learners ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list learners: %w", err)
	}
	defer rows.Close()

	out := []model.LearnerProfile{}
	for rows.Next() {
		var (
			l     model.LearnerProfile
			level string
			prefs string
		)
		if err := rows.Scan(&l.ID, &l.FullName, &level, &l.TrainingGoals, &prefs, &l.HealthNotes); err != nil {
			return nil, fmt.Errorf("scan learner: %w", err)
		}
		l.FitnessLevel = model.FitnessLevel(level)
		l.PreferredCategories = decodeInts(prefs)
		out = append(out, l)
	}
	return out, rows.Err()
}

// ListCoaches returns every coach with specialties, ordered by id.
func (c *Catalog) ListCoaches(ctx context.Context) ([]model.CoachProfile, error) {
	defer observe("list_coaches", time.Now())
	rows, err := c.db.QueryContext(ctx, `
SELECT id, full_name, bio, years_of_experience, rating, hourly_rate
FROM coaches ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list coaches: %w", err)
	}
	defer rows.Close()

	out := []model.CoachProfile{}
	index := map[string]int{}
	for rows.Next() {
		var (
			co     model.CoachProfile
			rating sql.NullFloat64
		)
		if err := rows.Scan(&co.ID, &co.FullName, &co.Bio, &co.YearsOfExperience, &rating, &co.HourlyRate); err != nil {
			return nil, fmt.Errorf("scan coach: %w", err)
		}
		if rating.Valid {
			r := rating.Float64
			co.Rating = &r
		}
		co.Specialties = []model.Specialty{}
		index[co.ID] = len(out)
		out = append(out, co)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list coaches: %w", err)
	}
	// release the single connection before the second query
	_ = rows.Close()

	specRows, err := c.db.QueryContext(ctx, `
SELECT coach_id, category_id, detail, experience_years
FROM coach_specialties ORDER BY coach_id, category_id`)
	if err != nil {
		return nil, fmt.Errorf("list specialties: %w", err)
	}
	defer specRows.Close()
	for specRows.Next() {
		var (
			coachID string
			s       model.Specialty
		)
		if err := specRows.Scan(&coachID, &s.CategoryID, &s.Detail, &s.ExperienceYears); err != nil {
			return nil, fmt.Errorf("scan specialty: %w", err)
		}
		if i, ok := index[coachID]; ok {
			out[i].Specialties = append(out[i].Specialties, s)
		}
	}
	return out, specRows.Err()
}

// ListCourses returns every course ordered by id.
func (c *Catalog) ListCourses(ctx context.Context) ([]model.Course, error) {
	defer observe("list_courses", time.Now())
	rows, err := c.db.QueryContext(ctx, `
SELECT id, coach_id, category_id, title, description, difficulty_level
FROM courses ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	defer rows.Close()

	out := []model.Course{}
	for rows.Next() {
		var (
			co         model.Course
			difficulty string
		)
		if err := rows.Scan(&co.ID, &co.CoachID, &co.CategoryID, &co.Title, &co.Description, &difficulty); err != nil {
			return nil, fmt.Errorf("scan course: %w", err)
		}
		co.DifficultyLevel = model.Difficulty(difficulty)
		out = append(out, co)
	}
	return out, rows.Err()
}

// ListSessions returns a learner's sessions in date order.
func (c *Catalog) ListSessions(ctx context.Context, learnerID string) ([]model.Session, error) {
	defer observe("list_sessions", time.Now())
	rows, err := c.db.QueryContext(ctx, `
SELECT id, learner_id, course_id, coach_id, category_id, category_name,
       training_date, duration_minutes, metrics_json, achievements_json
FROM sessions WHERE learner_id = ?
ORDER BY training_date, id`, learnerID)
	if err != nil {
		return nil, fmt.Errorf("list sessions for %s: %w", learnerID, err)
	}
	defer rows.Close()

	out := []model.Session{}
	for rows.Next() {
		var (
			s                      model.Session
			date, metricsRaw, achv string
		)
		if err := rows.Scan(&s.ID, &s.LearnerID, &s.CourseID, &s.CoachID, &s.CategoryID, &s.CategoryName,
			&date, &s.DurationMinutes, &metricsRaw, &achv); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		if s.TrainingDate, err = model.ParseDate(date); err != nil {
			// one bad row must not hide the rest of the history
			c.logger.Warn(ctx, "skipping session with invalid training date",
				logger.String("session_id", s.ID),
				logger.String("learner_id", learnerID),
				logger.String("training_date", date),
				logger.Error(err),
			)
			metrics.RecordErrorByComponent("storage", "invalid_session")
			continue
		}
		var ok bool
		s.Metrics, ok = decodeMetrics(metricsRaw)
		s.MetricsMalformed = !ok
		s.Achievements = decodeAchievements(achv)
		out = append(out, s)
	}
	return out, rows.Err()
}

// PutRawSession stores a session with metrics and achievements payloads
// exactly as given. Imports from external systems land here.
func (c *Catalog) PutRawSession(ctx context.Context, s *model.Session, metricsRaw, achievementsRaw string) error {
	defer observe("put_raw_session", time.Now())
	_, err := c.db.ExecContext(ctx, `
INSERT OR REPLACE INTO sessions
(id, learner_id, course_id, coach_id, category_id, category_name, training_date, duration_minutes, metrics_json, achievements_json)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.ID, s.LearnerID, s.CourseID, s.CoachID, s.CategoryID, s.CategoryName,
		s.TrainingDate.String(), s.DurationMinutes, metricsRaw, achievementsRaw)
	if err != nil {
		return fmt.Errorf("session %s: %w", s.ID, err)
	}
	return nil
}

func (c *Catalog) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(tx); err != nil {
		metrics.RecordErrorByComponent("storage", "write_error")
		return err
	}
	return tx.Commit()
}

func observe(op string, start time.Time) {
	metrics.RecordStorageLatency(op, float64(time.Since(start).Microseconds())/1000)
}
