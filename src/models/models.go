package models

// All lists every table in migration order.
func All() []interface{} {
	return []interface{}{
		&YearModel{},
		&BuildingModel{},
		&FeatureModel{},
		&FindModel{},
		&SharedFileModel{},
		&ReferenceModel{},
		&UserModel{},
		&CounterModel{},
	}
}
