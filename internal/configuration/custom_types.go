package configuration

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
)

// ParseCycleTime parses a cycle time value. In addition to go duration
// notation ("1m30s") the clock notation "HH:MM:SS" is supported.
func ParseCycleTime(value string) (time.Duration, error) {
	if strings.Contains(value, ":") {
		parts := strings.Split(value, ":")
		if len(parts) != 3 {
			return 0, fmt.Errorf("invalid cycle time %q, expected HH:MM:SS", value)
		}
		var total time.Duration
		units := []time.Duration{time.Hour, time.Minute, time.Second}
		for i, part := range parts {
			n, err := strconv.Atoi(part)
			if err != nil || n < 0 {
				return 0, fmt.Errorf("invalid cycle time %q, expected HH:MM:SS", value)
			}
			total += time.Duration(n) * units[i]
		}
		return total, nil
	}

	return time.ParseDuration(value)
}

// cycleTimeHookFunc returns a mapstructure decode hook that parses
// duration fields using ParseCycleTime, which allows the clock
// notation "HH:MM:SS" everywhere a duration is expected.
func cycleTimeHookFunc() mapstructure.DecodeHookFuncType {
	durationType := reflect.TypeOf(time.Duration(0))

	return func(
		f reflect.Type,
		t reflect.Type,
		data interface{},
	) (interface{}, error) {
		if t != durationType || f.Kind() != reflect.String {
			return data, nil
		}
		return ParseCycleTime(data.(string))
	}
}
