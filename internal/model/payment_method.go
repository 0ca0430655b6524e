package model

// PaymentMethod is an entry of the admin-seeded payment vocabulary.
type PaymentMethod struct {
	Key  string `db:"key" json:"key" yaml:"key"`
	Name string `db:"name" json:"name" yaml:"name"`
}
