package config

import (
	"fmt"
	"time"

	"github.com/netresearch/chronos"
	"github.com/netresearch/chronos/core"
)

// ToOptions converts the scheduler section into chronos.Options.
func (c *FileConfig) ToOptions() chronos.Options {
	return chronos.Options{
		InstanceName:     c.Scheduler.InstanceName,
		InstanceID:       c.Scheduler.InstanceID,
		ThreadCount:      c.Scheduler.ThreadCount,
		BatchTimeWindow:  c.Scheduler.BatchTimeWindow,
		MaxBatchSize:     c.Scheduler.MaxBatchSize,
		IdleWaitTime:     c.Scheduler.IdleWaitTime,
		MisfireThreshold: c.Scheduler.MisfireThreshold,
	}
}

// ApplyJobs builds a core.JobDetail and core.Trigger for every configured
// job and schedules them on s. Every job's Class must already have a
// factory registered via s.RegisterJob — ApplyJobs never registers job
// classes itself, matching spec.md §9's decision to replace SPI class
// loading with an explicit registry.
func (c *FileConfig) ApplyJobs(s *chronos.Scheduler) error {
	for _, j := range c.Jobs {
		if !s.HasJobClass(j.Class) {
			return fmt.Errorf("job %s/%s: no factory registered for class %q", j.Group, j.Name, j.Class)
		}

		key := core.NewKey(j.Name, j.Group)
		jd := core.NewJobDetail(key, j.Class)
		jd.Durable = j.Durable
		if j.Data != nil {
			data := make(core.JobDataMap, len(j.Data))
			for k, v := range j.Data {
				data[k] = v
			}
			jd.JobData = data
		}

		trigger, err := buildTrigger(key, j.Trigger)
		if err != nil {
			return fmt.Errorf("job %s/%s: %w", j.Group, j.Name, err)
		}

		if _, err := s.ScheduleJob(jd, trigger); err != nil {
			return fmt.Errorf("job %s/%s: %w", j.Group, j.Name, err)
		}
	}
	return nil
}

func buildTrigger(jobKey core.Key, t TriggerConfig) (core.Trigger, error) {
	triggerKey := core.NewKey(jobKey.Name+"-trigger", jobKey.Group)
	start := time.Now()

	switch t.Type {
	case "simple":
		st := core.NewSimpleTrigger(triggerKey, jobKey, start, t.RepeatCount, t.RepeatInterval)
		st.Misfire = misfireOf(t.Misfire)
		return st, nil

	case "cron":
		loc := time.UTC
		if t.Timezone != "" {
			l, err := time.LoadLocation(t.Timezone)
			if err != nil {
				return nil, fmt.Errorf("invalid timezone %q: %w", t.Timezone, err)
			}
			loc = l
		}
		ct, err := core.NewCronTrigger(triggerKey, jobKey, t.Cron, loc, start)
		if err != nil {
			return nil, err
		}
		ct.Misfire = misfireOf(t.Misfire)
		return ct, nil

	case "calendar-interval":
		unit, err := parseIntervalUnit(t.IntervalUnit)
		if err != nil {
			return nil, err
		}
		cit := core.NewCalendarIntervalTrigger(triggerKey, jobKey, start, t.Interval, unit)
		if t.Calendar != "" {
			cit.Calendar = t.Calendar
		}
		cit.Misfire = misfireOf(t.Misfire)
		return cit, nil

	case "daily-time-interval":
		unit, err := parseIntervalUnit(t.IntervalUnit)
		if err != nil {
			return nil, err
		}
		days, err := parseDaySet(t.DaysOfWeek)
		if err != nil {
			return nil, err
		}
		dtit, err := core.NewDailyTimeIntervalTrigger(triggerKey, jobKey, start, t.Interval, unit, days, t.StartTimeOfDay, t.EndTimeOfDay, time.UTC)
		if err != nil {
			return nil, err
		}
		dtit.Misfire = misfireOf(t.Misfire)
		return dtit, nil

	default:
		return nil, fmt.Errorf("unknown trigger type %q", t.Type)
	}
}

func parseIntervalUnit(unit string) (core.IntervalUnit, error) {
	switch unit {
	case "second":
		return core.IntervalSecond, nil
	case "minute":
		return core.IntervalMinute, nil
	case "hour":
		return core.IntervalHour, nil
	case "day":
		return core.IntervalDay, nil
	case "week":
		return core.IntervalWeek, nil
	case "month":
		return core.IntervalMonth, nil
	case "year":
		return core.IntervalYear, nil
	default:
		return 0, fmt.Errorf("unknown interval_unit %q", unit)
	}
}

func parseDaySet(days []string) (core.DaySet, error) {
	if len(days) == 0 {
		return core.EveryDay, nil
	}
	var set core.DaySet
	names := map[string]core.DaySet{
		"sunday": core.Sunday, "monday": core.Monday, "tuesday": core.Tuesday,
		"wednesday": core.Wednesday, "thursday": core.Thursday, "friday": core.Friday,
		"saturday": core.Saturday,
	}
	for _, d := range days {
		bit, ok := names[d]
		if !ok {
			return 0, fmt.Errorf("unknown day_of_week %q", d)
		}
		set |= bit
	}
	return set, nil
}

func misfireOf(name string) core.MisfireInstruction {
	switch name {
	case "fire-once-now":
		return core.MisfireFireOnceNow
	case "do-nothing":
		return core.MisfireDoNothing
	case "ignore":
		return core.MisfireIgnore
	default:
		return core.MisfireSmartPolicy
	}
}
