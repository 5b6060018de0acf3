package models

import "time"

// Prediction is the stored row. InputData and Results hold JSON text; Results
// are in seconds as produced by the engine.
type Prediction struct {
	ID        uint      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	UserID    uint      `gorm:"column:user_id;not null;index" json:"user_id"`
	User      *User     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	InputData string    `gorm:"column:input_data;type:text;not null" json:"input_data"`
	Results   string    `gorm:"column:results;type:text;not null" json:"results"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime;index" json:"created_at"`
}

func (Prediction) TableName() string { return "predictions" }

// PredictionRecord is a decoded history entry with results in minutes.
type PredictionRecord struct {
	ID        uint         `json:"id"`
	UserID    uint         `json:"user_id"`
	InputData FlightInput  `json:"input_data"`
	Results   DelayResults `json:"results"`
	CreatedAt time.Time    `json:"created_at"`
}
