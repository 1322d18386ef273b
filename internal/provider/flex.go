package provider

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"sync"
)

var (
	breakdownFieldMap     map[string]int
	breakdownFieldMapOnce sync.Once
)

func getBreakdownFieldMap() map[string]int {
	breakdownFieldMapOnce.Do(func() {
		t := reflect.TypeOf(apiBreakdown{})
		breakdownFieldMap = make(map[string]int, t.NumField())
		for i := 0; i < t.NumField(); i++ {
			tag := t.Field(i).Tag.Get("json")
			if tag == "" || tag == "-" {
				continue
			}
			breakdownFieldMap[strings.Split(tag, ",")[0]] = i
		}
	})
	return breakdownFieldMap
}

// UnmarshalJSON accepts point fields encoded as numbers or as quoted strings.
// Some offseason events publish breakdowns from hand-entered spreadsheets.
func (b *apiBreakdown) UnmarshalJSON(data []byte) error {
	type alias apiBreakdown
	a := (*alias)(b)

	if err := json.Unmarshal(data, a); err == nil {
		return nil
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("score breakdown: %w", err)
	}

	fields := getBreakdownFieldMap()
	v := reflect.ValueOf(a).Elem()
	for key, rawVal := range raw {
		idx, ok := fields[key]
		if !ok {
			continue
		}
		fv := v.Field(idx)

		ptr := reflect.New(fv.Type())
		if err := json.Unmarshal(rawVal, ptr.Interface()); err == nil {
			fv.Set(ptr.Elem())
			continue
		}

		if len(rawVal) > 1 && rawVal[0] == '"' {
			var s string
			if err := json.Unmarshal(rawVal, &s); err != nil || s == "" {
				continue
			}
			if n, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
				fv.SetFloat(n)
			}
		}
	}
	return nil
}
