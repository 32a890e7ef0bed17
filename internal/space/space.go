// Package space manages quota-bounded picture containers and their
// aggregate usage counters.
package space

import "time"

// Level determines the quota a space is provisioned with.
type Level string

const (
	LevelCommon   Level = "common"
	LevelPro      Level = "pro"
	LevelFlagship Level = "flagship"
)

// Space is a per-user container of pictures with enforced size/count quotas.
// TotalCount and TotalSize are maintained exclusively through relative
// updates committed together with picture writes; they are never recomputed.
type Space struct {
	ID         string    `json:"id"`
	OwnerID    string    `json:"ownerId"`
	Name       string    `json:"name"`
	Level      Level     `json:"level"`
	MaxCount   int64     `json:"maxCount"`
	MaxSize    int64     `json:"maxSize"`
	TotalCount int64     `json:"totalCount"`
	TotalSize  int64     `json:"totalSize"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// limits holds the quota preset for a level.
type limits struct {
	maxCount int64
	maxSize  int64
}

var levelLimits = map[Level]limits{
	LevelCommon:   {maxCount: 100, maxSize: 100 << 20},
	LevelPro:      {maxCount: 1000, maxSize: 1 << 30},
	LevelFlagship: {maxCount: 10000, maxSize: 10 << 30},
}

// FillByLevel stamps MaxCount/MaxSize from the space's level preset. Unknown
// levels fall back to common.
func (s *Space) FillByLevel() {
	l, ok := levelLimits[s.Level]
	if !ok {
		s.Level = LevelCommon
		l = levelLimits[LevelCommon]
	}
	s.MaxCount = l.maxCount
	s.MaxSize = l.maxSize
}
