package config

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"

	"github.com/tracetool/tracetool/internal/common/timeutil"
)

// CustomHooks replaces viper's default decode hook, so the defaults it would have installed are composed in here.
var CustomHooks = []viper.DecoderConfigOption{
	viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		DurationDecodeHook(),
		WeekdayDecodeHook(),
		mapstructure.StringToSliceHookFunc(","),
	)),
}

// DurationDecodeHook decodes strings in the tracetool duration grammar (e.g. "1D", "2 weeks"), bare units
// (e.g. "ms", which is one millisecond) and integer nanosecond counts into time.Duration.
func DurationDecodeHook() mapstructure.DecodeHookFuncType {
	return func(
		f reflect.Type,
		t reflect.Type,
		data interface{},
	) (interface{}, error) {
		if t != reflect.TypeOf(time.Duration(0)) {
			return data, nil
		}
		switch f.Kind() {
		case reflect.String:
			if unit, ok := timeutil.UnitOf(strings.TrimSpace(data.(string))); ok {
				return unit, nil
			}
			return timeutil.ParseDuration(data.(string))
		case reflect.Int, reflect.Int32, reflect.Int64:
			return time.Duration(reflect.ValueOf(data).Int()), nil
		default:
			return nil, fmt.Errorf("cannot decode %v of type %s into a duration", data, f)
		}
	}
}

func WeekdayDecodeHook() mapstructure.DecodeHookFuncType {
	return func(
		f reflect.Type,
		t reflect.Type,
		data interface{},
	) (interface{}, error) {
		if f.Kind() != reflect.String || t != reflect.TypeOf(time.Sunday) {
			return data, nil
		}
		return timeutil.ParseWeekday(data.(string))
	}
}
