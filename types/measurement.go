package types

import (
	"fmt"
	"reflect"
	"time"

	"github.com/linka-aq/linka-proxy/utils"
	"github.com/linka-aq/linka-proxy/utils/typeutils"
)

// AllowedFields lists the measurement columns forwarded to the sink. Any
// other column coming back from the source table is discarded before
// validation.
var AllowedFields = []string{
	"pm10",
	"pm1dot0",
	"pm2dot5",
	"humidity",
	"temperature",
	"pressure",
	"longitude",
	"latitude",
	"recorded",
	"source",
	"sensor",
	"description",
}

// Measurement is one validated air quality sample in the shape the Linka
// API accepts. Optional readings stay nil when the station did not report
// them; coordinates are mandatory.
type Measurement struct {
	Sensor      string   `json:"sensor" parquet:"sensor" validate:"required"`
	Source      string   `json:"source" parquet:"source" validate:"required"`
	Description string   `json:"description,omitempty" parquet:"description"`
	Version     string   `json:"version,omitempty" parquet:"version"`
	PM1Dot0     *float64 `json:"pm1dot0,omitempty" parquet:"pm1dot0" validate:"omitempty,gte=0,lte=500"`
	PM2Dot5     *float64 `json:"pm2dot5,omitempty" parquet:"pm2dot5" validate:"omitempty,gte=0,lte=500"`
	PM10        *float64 `json:"pm10,omitempty" parquet:"pm10" validate:"omitempty,gte=0,lte=500"`
	Humidity    *float64 `json:"humidity,omitempty" parquet:"humidity" validate:"omitempty,gte=1,lte=100"`
	Temperature *float64 `json:"temperature,omitempty" parquet:"temperature" validate:"omitempty,gte=-89.2,lte=134"`
	Pressure    *float64 `json:"pressure,omitempty" parquet:"pressure" validate:"omitempty,gte=870,lte=1084"`
	CO2         *float64 `json:"co2,omitempty" parquet:"co2" validate:"omitempty,gte=50,lte=80000"`
	Longitude   *float64 `json:"longitude" parquet:"longitude" validate:"required,gte=-180,lte=180"`
	Latitude    *float64 `json:"latitude" parquet:"latitude" validate:"required,gte=-90,lte=90"`
	Recorded    string   `json:"recorded" parquet:"recorded" validate:"required"`
}

// MeasurementFromRecord filters, relabels and validates one source row.
// Rows from unknown or ignored stations and rows failing range validation
// return an error so the caller can drop them.
func MeasurementFromRecord(record Record) (*Measurement, error) {
	cleaned := make(Record)
	for _, field := range AllowedFields {
		value, found := record[field]
		if !found || isEmptyValue(value) {
			continue
		}
		cleaned[field] = value
	}

	source, _ := cleaned["source"].(string)
	station, found := StationFor(source)
	if !found {
		return nil, fmt.Errorf("can't find %s", source)
	}
	if station.Ignore {
		return nil, fmt.Errorf("ignore %s", source)
	}

	recorded, err := typeutils.ReformatUnixTimestamp(cleaned["recorded"])
	if err != nil {
		return nil, fmt.Errorf("failed to parse recorded timestamp: %s", err)
	}

	measurement := &Measurement{
		Sensor:      station.Sensor,
		Source:      station.Source,
		Description: station.Description,
		Recorded:    recorded.Format(time.RFC3339),
	}

	numericFields := []struct {
		name string
		dest **float64
	}{
		{"pm1dot0", &measurement.PM1Dot0},
		{"pm2dot5", &measurement.PM2Dot5},
		{"pm10", &measurement.PM10},
		{"humidity", &measurement.Humidity},
		{"temperature", &measurement.Temperature},
		{"pressure", &measurement.Pressure},
		{"longitude", &measurement.Longitude},
		{"latitude", &measurement.Latitude},
	}
	for _, field := range numericFields {
		value, found := cleaned[field.name]
		if !found {
			continue
		}
		parsed, err := typeutils.ReformatFloat64(value)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %s", field.name, err)
		}
		*field.dest = &parsed
	}

	if err := utils.Validate(measurement); err != nil {
		return nil, fmt.Errorf("invalid measurement: %s", err)
	}

	return measurement, nil
}

// isEmptyValue mirrors the drop rule for unreported readings: NULLs, empty
// strings and numeric zeroes all count as not reported.
func isEmptyValue(value any) bool {
	switch value := value.(type) {
	case nil:
		return true
	case string:
		return value == ""
	case []byte:
		return len(value) == 0
	case bool:
		return !value
	case time.Time:
		return value.IsZero()
	default:
		rv := reflect.ValueOf(value)
		switch rv.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			return rv.Int() == 0
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			return rv.Uint() == 0
		case reflect.Float32, reflect.Float64:
			return rv.Float() == 0
		}
	}
	return false
}
