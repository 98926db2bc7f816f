package recommend

import (
	"sort"

	"github.com/okian/coachmatch/internal/domain/matching"
	"github.com/okian/coachmatch/internal/domain/model"
)

// RankedCourse is a course with its relevance to the learner's goals.
type RankedCourse struct {
	model.Course
	Relevance float64 `json:"relevance"`
}

// RankByGoals orders courses by how closely their title and description
// match goals. Courses with equal relevance keep their input order. Empty
// goals leave the order untouched.
func RankByGoals(courses []model.Course, goals string) []RankedCourse {
	out := make([]RankedCourse, len(courses))
	docs := make([]string, 0, len(courses)+1)
	docs = append(docs, goals)
	for i := range courses {
		docs = append(docs, courses[i].Text())
	}
	v := matching.NewVectorizer(docs...)
	for i := range courses {
		out[i] = RankedCourse{Course: courses[i], Relevance: v.Similarity(0, i+1)}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Relevance > out[j].Relevance
	})
	return out
}

func filterCourses(courses []model.Course, keep func(*model.Course) bool) []model.Course {
	out := make([]model.Course, 0, len(courses))
	for i := range courses {
		if keep(&courses[i]) {
			out = append(out, courses[i])
		}
	}
	return out
}

// byMetricRelevance re-orders ranked courses so those training the given
// metrics come first. Goal ranking breaks ties.
func byMetricRelevance(ranked []RankedCourse, metrics []string) {
	if len(metrics) == 0 {
		return
	}
	type scored struct {
		course RankedCourse
		hits   int
	}
	tmp := make([]scored, len(ranked))
	for i := range ranked {
		tmp[i] = scored{course: ranked[i], hits: metricRelevance(&ranked[i].Course, metrics)}
	}
	sort.SliceStable(tmp, func(i, j int) bool { return tmp[i].hits > tmp[j].hits })
	for i := range tmp {
		ranked[i] = tmp[i].course
	}
}

func head(ranked []RankedCourse, n int) []RankedCourse {
	if n >= 0 && len(ranked) > n {
		ranked = ranked[:n]
	}
	out := make([]RankedCourse, len(ranked))
	copy(out, ranked)
	return out
}
