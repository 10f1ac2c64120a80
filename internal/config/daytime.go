package config

import (
	"fmt"
	"time"
)

// DayTime is a wall-clock time of day ("15:10" or "15:10:30" in config).
// Comparisons ignore the date so a quote timestamp from any session can be
// checked against configured market times.
type DayTime struct {
	sec int // seconds since midnight
	set bool
}

func ParseDayTime(s string) (DayTime, error) {
	var h, m, sec int
	if _, err := fmt.Sscanf(s, "%d:%d:%d", &h, &m, &sec); err != nil {
		sec = 0
		if _, err := fmt.Sscanf(s, "%d:%d", &h, &m); err != nil {
			return DayTime{}, fmt.Errorf("invalid time of day %q: %w", s, err)
		}
	}
	if h < 0 || h > 23 || m < 0 || m > 59 || sec < 0 || sec > 59 {
		return DayTime{}, fmt.Errorf("time of day %q out of range", s)
	}
	return DayTime{sec: h*3600 + m*60 + sec, set: true}, nil
}

func MustDayTime(s string) DayTime {
	d, err := ParseDayTime(s)
	if err != nil {
		panic(err)
	}
	return d
}

func (d DayTime) IsZero() bool { return !d.set }

func (d DayTime) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", d.sec/3600, (d.sec/60)%60, d.sec%60)
}

func secondsOfDay(t time.Time) int {
	return t.Hour()*3600 + t.Minute()*60 + t.Second()
}

// AtOrBefore reports whether d <= the clock of t.
func (d DayTime) AtOrBefore(t time.Time) bool {
	return d.sec <= secondsOfDay(t)
}

// After reports whether d > the clock of t.
func (d DayTime) After(t time.Time) bool {
	return d.sec > secondsOfDay(t)
}

// Before reports whether d < the clock of t.
func (d DayTime) Before(t time.Time) bool {
	return d.sec < secondsOfDay(t)
}

// Until returns the time from t until d on the same day; negative when d
// has already passed.
func (d DayTime) Until(t time.Time) time.Duration {
	return time.Duration(d.sec-secondsOfDay(t)) * time.Second
}

func (d *DayTime) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var raw string
	if err := unmarshal(&raw); err != nil {
		return err
	}
	if raw == "" {
		*d = DayTime{}
		return nil
	}
	parsed, err := ParseDayTime(raw)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (d DayTime) MarshalYAML() (interface{}, error) {
	if !d.set {
		return "", nil
	}
	return d.String(), nil
}
