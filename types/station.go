package types

// Station describes one FIUNA monitoring station. Rows arrive keyed by the
// station name used inside the campus network and leave relabelled with the
// public source identifier.
type Station struct {
	Source      string `json:"source"`
	Sensor      string `json:"sensor"`
	Description string `json:"description"`
	Ignore      bool   `json:"ignore,omitempty"`
}

// Stations maps the source value reported by the campus logger to the
// station metadata stamped onto every forwarded measurement.
var Stations = map[string]Station{
	"Estacion1": {
		Source:      "fiuna-01",
		Sensor:      "OPC_N2",
		Description: "FIUNA 01, Campus",
		Ignore:      true,
	},
	"Estacion2": {
		Source:      "fiuna-02",
		Sensor:      "OPC_N2",
		Description: "FIUNA 02, Fernando",
	},
	"Estacion3": {
		Source:      "fiuna-03",
		Sensor:      "OPC_N2",
		Description: "FIUNA 03, Acceso Sur",
		Ignore:      true,
	},
	"Estacion4": {
		Source:      "fiuna-04",
		Sensor:      "OPC_N2",
		Description: "FIUNA 04, San Vicente",
	},
	"Estacion5": {
		Source:      "fiuna-05",
		Sensor:      "OPC_N2",
		Description: "FIUNA 05, Villa Morra",
	},
	"Estacion6": {
		Source:      "fiuna-06",
		Sensor:      "OPC_N2",
		Description: "FIUNA 06, Mariscal López",
		Ignore:      true,
	},
	"Estacion7": {
		Source:      "fiuna-07",
		Sensor:      "OPC_N2",
		Description: "FIUNA 07, San Roque",
	},
	"Estacion8": {
		Source:      "fiuna-08",
		Sensor:      "OPC_N2",
		Description: "FIUNA 08, Centro",
	},
	"Estacion9": {
		Source:      "fiuna-09",
		Sensor:      "OPC_N2",
		Description: "FIUNA 08, Mbocayaty",
	},
	"Estacion10": {
		Source:      "fiuna-10",
		Sensor:      "OPC_N2",
		Description: "FIUNA 08, Residenta",
	},
	"Estacion11": {
		Source:      "fiuna-11",
		Sensor:      "OPC_N2",
		Description: "FIUNA 11, Cerrito",
		Ignore:      true,
	},
}

// StationFor looks up the station registered for the given source name
func StationFor(source string) (Station, bool) {
	station, found := Stations[source]
	return station, found
}
