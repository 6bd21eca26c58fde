package healthtip

import (
	"context"
	"time"

	"github.com/carepulse/hms-api/internal/model"
)

// seasonalGenerator is the built-in fallback content source: a fixed rotation
// of tips by season and slot. Deployments that plug in an AI text generator
// replace it at wiring time.
type seasonalGenerator struct {
	nowFn func() time.Time
	loc   *time.Location
}

func NewSeasonalGenerator(loc *time.Location) Generator {
	if loc == nil {
		loc = time.Local
	}
	return &seasonalGenerator{nowFn: time.Now, loc: loc}
}

type tipTemplate struct {
	title    string
	content  string
	category string
	weather  string
}

var seasonalTips = map[string]map[model.TipSlot][]tipTemplate{
	"summer": {
		model.TipSlotMorning: {
			{"Stay Hydrated", "Start your day with two glasses of water and keep a bottle with you. Aim for at least 3 litres through the day.", "hydration", "hot and dry"},
			{"Beat the Heat Early", "Plan outdoor activity before 10 AM. Wear light cotton clothing and use sunscreen on exposed skin.", "heat safety", "hot and dry"},
		},
		model.TipSlotEvening: {
			{"Light Evening Meals", "Prefer a light dinner with fresh fruit and curd. Heavy, oily food in the heat strains digestion overnight.", "nutrition", "warm evening"},
			{"Cool Down Before Bed", "A lukewarm shower before bed helps the body shed heat and improves sleep quality in summer.", "sleep", "warm evening"},
		},
	},
	"monsoon": {
		model.TipSlotMorning: {
			{"Boil Your Water", "Waterborne infections spike in the rains. Drink boiled or filtered water and wash produce thoroughly.", "infection prevention", "humid and rainy"},
			{"Keep Feet Dry", "Dry your feet and change wet footwear promptly to avoid fungal infections common in the monsoon.", "hygiene", "humid and rainy"},
		},
		model.TipSlotEvening: {
			{"Guard Against Mosquitoes", "Use repellent and keep windows screened at dusk. Clear any standing water around your home.", "infection prevention", "humid evening"},
			{"Warm Fluids Help", "A cup of warm herbal tea in the evening soothes the throat and supports immunity during damp weather.", "immunity", "humid evening"},
		},
	},
	"winter": {
		model.TipSlotMorning: {
			{"Warm Up Before Exercise", "Cold muscles injure easily. Spend five extra minutes warming up before your morning walk or workout.", "exercise", "cold morning"},
			{"Get Morning Sunlight", "Ten minutes of morning sun helps vitamin D levels, which dip in winter months.", "wellness", "cold and clear"},
		},
		model.TipSlotEvening: {
			{"Layer Up After Sunset", "Temperatures fall quickly in the evening. Dress in layers, and cover ears and head outdoors.", "cold safety", "cold evening"},
			{"Moisturise Daily", "Winter air dries the skin. Apply moisturiser after your evening wash, especially on hands and face.", "skin care", "cold and dry"},
		},
	},
}

func seasonOf(t time.Time) string {
	switch t.Month() {
	case time.March, time.April, time.May, time.June:
		return "summer"
	case time.July, time.August, time.September, time.October:
		return "monsoon"
	default:
		return "winter"
	}
}

func (g *seasonalGenerator) Generate(_ context.Context, slot model.TipSlot) (*model.HealthTip, error) {
	now := g.nowFn().In(g.loc)
	season := seasonOf(now)

	templates := seasonalTips[season][slot]
	// Rotate by day of year so consecutive days vary.
	tmpl := templates[now.YearDay()%len(templates)]

	return &model.HealthTip{
		Title:          tmpl.title,
		Content:        tmpl.content,
		Category:       tmpl.category,
		WeatherContext: tmpl.weather,
		Season:         season,
		Priority:       "normal",
		TargetAudience: "all",
	}, nil
}
