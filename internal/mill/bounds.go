package mill

import "math"

type Bound struct {
	Min, Max float64
}

func (b Bound) Clip(v float64) float64 {
	return math.Min(b.Max, math.Max(b.Min, v))
}

func (b Bound) Contains(v float64) bool {
	return v >= b.Min && v <= b.Max
}

// Bounds are the documented ranges of clipped variables, keyed by column.
var Bounds = map[string]Bound{
	"feed_rate":                    {Min: 180, Max: 350},
	"velocidad_porcentaje_critica": {Min: 70, Max: 85},
	"nivel_carga_bolas":            {Min: 28, Max: 36},
	"densidad_pulpa":               {Min: 68, Max: 78},
	"nivel_desgaste_liners":        {Min: 0, Max: 80},
	"calidad_aceite_ppm":           {Min: 0, Max: 6},
	"work_index_bond":              {Min: 10, Max: 20},
	"dureza_mineral":               {Min: 3, Max: 6.5},
	"humedad_mineral":              {Min: 4, Max: 12},
	"granulometria_feed_p80":       {Min: 9000, Max: 15000},
}

var (
	feedRateBound    = Bounds["feed_rate"]
	speedPctBound    = Bounds["velocidad_porcentaje_critica"]
	ballChargeBound  = Bounds["nivel_carga_bolas"]
	pulpDensityBound = Bounds["densidad_pulpa"]
	workIndexBound   = Bounds["work_index_bond"]
	hardnessBound    = Bounds["dureza_mineral"]
	moistureBound    = Bounds["humedad_mineral"]
	feedP80Bound     = Bounds["granulometria_feed_p80"]
	oilQualityBound  = Bound{Min: 70, Max: 100}
)
