package main

import (
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/extism/go-pdk"
)

type request struct {
	Intent string         `json:"intent"`
	Slots  map[string]any `json:"slots"`
}

type reply struct {
	OK          bool   `json:"ok"`
	Message     string `json:"message"`
	DisplayType string `json:"display_type"`
	DisplayData any    `json:"display_data,omitempty"`
}

type geocodeResponse struct {
	Results []struct {
		Name      string  `json:"name"`
		Country   string  `json:"country"`
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
	} `json:"results"`
}

type forecastResponse struct {
	CurrentWeather struct {
		Temperature float64 `json:"temperature"`
		WindSpeed   float64 `json:"windspeed"`
		WeatherCode int     `json:"weathercode"`
	} `json:"current_weather"`
}

//export handle
func handle() int32 {
	var req request
	if err := json.Unmarshal(pdk.Input(), &req); err != nil {
		return fail("invalid input: " + err.Error())
	}
	if req.Intent != "weather.current" {
		return fail("unknown intent: " + req.Intent)
	}

	city, _ := req.Slots["city"].(string)
	if city == "" {
		city = getConfig("default_city")
	}
	if city == "" {
		return fail("no city given and no default_city configured")
	}

	lat, lon, place, err := geocode(city)
	if err != nil {
		return fail(err.Error())
	}

	fc, err := forecast(lat, lon)
	if err != nil {
		return fail(err.Error())
	}

	hostLog("info", fmt.Sprintf("fetched weather for %s", place))

	msg := fmt.Sprintf("It's %.0f degrees in %s with %s.",
		fc.CurrentWeather.Temperature, place, describeCode(fc.CurrentWeather.WeatherCode))
	out, _ := json.Marshal(reply{
		OK:          true,
		Message:     msg,
		DisplayType: "info",
		DisplayData: map[string]any{
			"place":       place,
			"temperature": fc.CurrentWeather.Temperature,
			"windspeed":   fc.CurrentWeather.WindSpeed,
		},
	})
	pdk.Output(out)
	return 0
}

func geocode(city string) (lat, lon float64, place string, err error) {
	u := "https://geocoding-api.open-meteo.com/v1/search?count=1&name=" + url.QueryEscape(city)
	httpReq := pdk.NewHTTPRequest(pdk.MethodGet, u)
	resp := httpReq.Send()
	if resp.Status() >= 400 {
		return 0, 0, "", fmt.Errorf("geocoding failed: status %d", resp.Status())
	}
	var geo geocodeResponse
	if err := json.Unmarshal(resp.Body(), &geo); err != nil {
		return 0, 0, "", fmt.Errorf("geocoding: %w", err)
	}
	if len(geo.Results) == 0 {
		return 0, 0, "", fmt.Errorf("no such place: %s", city)
	}
	r := geo.Results[0]
	return r.Latitude, r.Longitude, r.Name, nil
}

func forecast(lat, lon float64) (*forecastResponse, error) {
	u := fmt.Sprintf("https://api.open-meteo.com/v1/forecast?latitude=%f&longitude=%f&current_weather=true", lat, lon)
	httpReq := pdk.NewHTTPRequest(pdk.MethodGet, u)
	resp := httpReq.Send()
	if resp.Status() >= 400 {
		return nil, fmt.Errorf("forecast failed: status %d", resp.Status())
	}
	var fc forecastResponse
	if err := json.Unmarshal(resp.Body(), &fc); err != nil {
		return nil, fmt.Errorf("forecast: %w", err)
	}
	return &fc, nil
}

// WMO weather interpretation codes, coarse buckets.
func describeCode(code int) string {
	switch {
	case code == 0:
		return "clear skies"
	case code <= 3:
		return "some clouds"
	case code <= 48:
		return "fog"
	case code <= 57:
		return "drizzle"
	case code <= 67:
		return "rain"
	case code <= 77:
		return "snow"
	case code <= 82:
		return "rain showers"
	case code <= 86:
		return "snow showers"
	default:
		return "a thunderstorm"
	}
}

func fail(msg string) int32 {
	out, _ := json.Marshal(reply{OK: false, Message: msg, DisplayType: "error"})
	pdk.Output(out)
	return 1
}

//go:wasmimport vesper log
func vesperLog(ptr uint64)

//go:wasmimport vesper get_config
func vesperGetConfig(ptr uint64) uint64

func hostLog(level, message string) {
	payload, _ := json.Marshal(map[string]string{"level": level, "message": message})
	mem := pdk.AllocateBytes(payload)
	defer mem.Free()
	vesperLog(mem.Offset())
}

func getConfig(key string) string {
	mem := pdk.AllocateString(key)
	defer mem.Free()
	off := vesperGetConfig(mem.Offset())
	if off == 0 {
		return ""
	}
	rmem := pdk.FindMemory(off)
	return string(rmem.ReadBytes())
}

func main() {}
