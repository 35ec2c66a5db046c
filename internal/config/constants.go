package config

import (
	"time"

	"github.com/akyairhashvil/ascetic/internal/models"
)

// Discipline durations.
const (
	// FocusEditLock is the immutability window on a focus task's title
	// after each accepted edit.
	FocusEditLock = 72 * time.Hour
	// StagnationThreshold marks a task as stagnant when untouched longer.
	StagnationThreshold = 3 * 24 * time.Hour
	// StaleTodayThreshold marks a task as overstaying in Today.
	StaleTodayThreshold = 24 * time.Hour
	// FocusPeriod is the weekly lock on the app title.
	FocusPeriod = 168 * time.Hour
	// PeriodCheckInterval bounds how often period expiry is evaluated.
	PeriodCheckInterval = time.Minute
)

// Sections lists every bucket in display order with its capacity.
// Limit 0 marks the unbounded Done bucket.
var Sections = []models.SectionConfig{
	{ID: models.SectionToday, Title: "Сегодня", Limit: 3},
	{ID: models.SectionTomorrow, Title: "Завтра", Limit: 3},
	{ID: models.SectionThisWeek, Title: "На этой неделе", Limit: 10},
	{ID: models.SectionNextWeek, Title: "На следующей неделе", Limit: 10},
	{ID: models.SectionMonth, Title: "Цели месяца", Limit: 20},
	{ID: models.SectionDone, Title: "Сделано", Limit: 0},
}

// SectionByID returns the config for a bucket.
func SectionByID(id models.SectionID) (models.SectionConfig, bool) {
	for _, s := range Sections {
		if s.ID == id {
			return s, true
		}
	}
	return models.SectionConfig{}, false
}

// TradingTags are the tags that gate completion behind the checklist.
var TradingTags = []string{"#trading", "#трейдинг"}

// TradingChecklist holds the acknowledgements required before a trading
// task may be closed.
var TradingChecklist = []string{
	"1. Считать R (Риск)",
	"2. Правило одного косяка",
	"3. Чек-лист вместо чуйки",
	"4. Работа-инвестор",
	"5. Полюбить скуку",
}

// Application/database settings.
const (
	AppName    = "ascetic"
	DBFileName = "ascetic.db"

	SettingAppTitle       = "app_title"
	SettingFocusStartTime = "focus_start_time"

	DefaultAppTitle = "Дисциплина."
)
