package models

import (
	"encoding/json"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DataType identifies how an observation entered the system.
type DataType string

const (
	DataTypeManual DataType = "manual"
	DataTypeSensor DataType = "sensor"
	DataTypeAPI    DataType = "api"
	DataTypeFile   DataType = "file"
)

// Category classifies the kind of farm activity a record describes.
type Category string

const (
	CategoryPlanting  Category = "planting"
	CategoryHarvest   Category = "harvest"
	CategoryInput     Category = "input"
	CategoryWeather   Category = "weather"
	CategoryMarket    Category = "market"
	CategoryLivestock Category = "livestock"
	CategoryLabor     Category = "labor"
	CategoryEquipment Category = "equipment"
)

// Closed value sets for the enum-constrained fields. Validation checks raw
// payloads against these before a record is ever handed to storage.
var (
	DataTypes = []string{"manual", "sensor", "api", "file"}

	Categories = []string{"planting", "harvest", "input", "weather", "market", "livestock", "labor", "equipment"}

	Crops = []string{"maize", "beans", "coffee", "bananas", "tomatoes", "potatoes", "rice", "wheat", "other"}

	LivestockKinds = []string{"cattle", "goats", "poultry", "pigs", "sheep", "fish", "other"}

	Units = []string{"kg", "tons", "liters", "bags", "units", "hours", "acres", "hectares"}
)

// DataHealth carries per-record quality metrics computed at validation time
// and refreshed by the periodic re-check job.
type DataHealth struct {
	Score       int       `bson:"score" json:"score"`
	Issues      []string  `bson:"issues" json:"issues"`
	LastChecked time.Time `bson:"lastChecked" json:"lastChecked"`
}

// FarmRecord is one farm observation belonging to exactly one user.
type FarmRecord struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID     string             `bson:"userId" json:"userId"`
	DataType   DataType           `bson:"dataType" json:"dataType"`
	Category   Category           `bson:"category" json:"category"`
	Crop       string             `bson:"crop,omitempty" json:"crop,omitempty"`
	Livestock  string             `bson:"livestock,omitempty" json:"livestock,omitempty"`
	FieldID    string             `bson:"fieldId,omitempty" json:"fieldId,omitempty"`
	Activity   string             `bson:"activity,omitempty" json:"activity,omitempty"`
	Quantity   *float64           `bson:"quantity,omitempty" json:"quantity,omitempty"`
	Unit       string             `bson:"unit,omitempty" json:"unit,omitempty"`
	Cost       *float64           `bson:"cost,omitempty" json:"cost,omitempty"`
	Revenue    *float64           `bson:"revenue,omitempty" json:"revenue,omitempty"`
	Date       time.Time          `bson:"date" json:"date"`
	IsVerified bool               `bson:"isVerified" json:"isVerified"`
	DataHealth DataHealth         `bson:"dataHealth" json:"dataHealth"`
	Notes      string             `bson:"notes,omitempty" json:"notes,omitempty"`
	Tags       []string           `bson:"tags,omitempty" json:"tags,omitempty"`
	CreatedAt  time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Profit derives revenue minus cost, treating missing operands as zero.
// It is computed on the fly and never stored.
func (r FarmRecord) Profit() float64 {
	var revenue, cost float64
	if r.Revenue != nil {
		revenue = *r.Revenue
	}
	if r.Cost != nil {
		cost = *r.Cost
	}
	return revenue - cost
}

// MarshalJSON serializes the record with the derived profit field included.
func (r FarmRecord) MarshalJSON() ([]byte, error) {
	type alias FarmRecord
	return json.Marshal(struct {
		alias
		Profit float64 `json:"profit"`
	}{alias(r), r.Profit()})
}
