package demo

// ValueKind classifies the shape of a data point's value.
// It is declared by the rendering code when it registers interest and decides
// what the generator synthesises for that identifier.
type ValueKind string

// Value kinds understood by the generator.
const (
	KindPercent  ValueKind = "%"        // integer 0..100
	KindKelvin   ValueKind = "kelvin"   // colour temperature 2000..6500
	KindRGB      ValueKind = "rgb"      // "#rrggbb"
	KindHue      ValueKind = "hue"      // HSV hue 0..240
	KindBool     ValueKind = "bool"     // true ~10% of the time
	KindRSSI     ValueKind = "rssi"     // signal strength -100..0
	KindEnum3    ValueKind = "enum3"    // 0, 1 or 2
	KindCelsius  ValueKind = "celsius"  // -30.00..50.00
	KindMinutes  ValueKind = "minutes"  // 0..1200
	KindText     ValueKind = "text"     // short random text
	KindNumber   ValueKind = "number"   // 0..1000
	KindCalendar ValueKind = "calendar" // JSON-encoded event list
)

// ParseValueKind maps a configuration tag to a ValueKind.
// Unknown tags map to KindNumber.
func ParseValueKind(tag string) ValueKind {
	switch ValueKind(tag) {
	case KindPercent, KindKelvin, KindRGB, KindHue, KindBool, KindRSSI, KindEnum3,
		KindCelsius, KindMinutes, KindText, KindNumber, KindCalendar:
		return ValueKind(tag)
	}
	switch tag {
	case "percent", "percentage", "dimmer":
		return KindPercent
	case "boolean", "switch":
		return KindBool
	case "temperature", "°C":
		return KindCelsius
	case "ct", "colortemp":
		return KindKelvin
	case "string":
		return KindText
	}
	return KindNumber
}
