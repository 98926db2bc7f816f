package api

import "github.com/okian/coachmatch/internal/domain/model"

// Request bodies of the v1 routes.

type scoreRequest struct {
	Learner model.LearnerProfile `json:"learner" validate:"required"`
	Coach   model.CoachProfile   `json:"coach" validate:"required"`
}

// coachesRequest ranks coaches for one learner, or for each of Learners
// when that list is given instead.
type coachesRequest struct {
	Learner  *model.LearnerProfile  `json:"learner"`
	Learners []model.LearnerProfile `json:"learners" validate:"omitempty,dive"`
	Coaches  []model.CoachProfile   `json:"coaches" validate:"dive"`
	Limit    int                    `json:"limit" validate:"min=0"`
}

type learnersRequest struct {
	Coach    model.CoachProfile     `json:"coach" validate:"required"`
	Learners []model.LearnerProfile `json:"learners" validate:"dive"`
	Limit    int                    `json:"limit" validate:"min=0"`
}

type courseRequest struct {
	Course   model.Course           `json:"course" validate:"required"`
	Coach    model.CoachProfile     `json:"coach" validate:"required"`
	Learners []model.LearnerProfile `json:"learners" validate:"dive"`
	Limit    int                    `json:"limit" validate:"min=0"`
}

type sessionsRequest struct {
	Sessions []model.Session `json:"sessions" validate:"dive"`
}

type trendRequest struct {
	Values []float64 `json:"values"`
}

type forecastRequest struct {
	Sessions    []model.Session `json:"sessions" validate:"dive"`
	Metric      string          `json:"metric"`
	HorizonDays int             `json:"horizon_days" validate:"min=0,max=365"`
}

type recommendRequest struct {
	Learner  model.LearnerProfile `json:"learner" validate:"required"`
	Sessions []model.Session      `json:"sessions" validate:"dive"`
	Courses  []model.Course       `json:"courses" validate:"dive"`
}

type batchRequest struct {
	IdempotencyKey string   `json:"idempotency_key" validate:"max=128"`
	LearnerIDs     []string `json:"learner_ids" validate:"required,min=1"`
}

type rankingResponse struct {
	Entries []Entry `json:"entries"`
}

type learnerRanking struct {
	LearnerID string  `json:"learner_id"`
	Entries   []Entry `json:"entries"`
}

type multiRankingResponse struct {
	Rankings []learnerRanking `json:"rankings"`
}

type anomaliesResponse struct {
	Anomalies []model.AnomalyRecord `json:"anomalies"`
}

type batchResponse struct {
	Status    string    `json:"status"`
	Duplicate bool      `json:"duplicate"`
	Job       model.Job `json:"job"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
