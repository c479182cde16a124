package validators

import "go.mongodb.org/mongo-driver/bson"

var CareRequestValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"title",
			"care_type",
			"start_date",
			"end_date",
			"status",
			"owner_id",
			"pet_id",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"title": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 200,
			},

			"description": bson.M{
				"bsonType":  "string",
				"maxLength": 1000,
			},

			"care_type": bson.M{
				"bsonType": "string",
				"enum": []string{
					"pet_sitting",
					"pet_boarding",
					"dog_walking",
					"daycare",
					"overnight",
				},
			},

			"start_date": bson.M{
				"bsonType": "date",
			},

			"end_date": bson.M{
				"bsonType": "date",
			},

			"budget": bson.M{
				"bsonType": []string{"double", "int", "long", "decimal"},
				"minimum":  0,
			},

			"location": bson.M{
				"bsonType":  "string",
				"maxLength": 200,
			},

			"latitude": bson.M{
				"bsonType": []string{"double", "int"},
				"minimum":  -90,
				"maximum":  90,
			},

			"longitude": bson.M{
				"bsonType": []string{"double", "int"},
				"minimum":  -180,
				"maximum":  180,
			},

			"special_instructions": bson.M{
				"bsonType":  "string",
				"maxLength": 500,
			},

			"status": bson.M{
				"bsonType": "string",
				"enum": []string{
					"open",
					"in_progress",
					"completed",
					"cancelled",
					"expired",
				},
			},

			"owner_id": bson.M{
				"bsonType":  "string",
				"minLength": 1,
			},

			"pet_id": bson.M{
				"bsonType":  "string",
				"minLength": 1,
			},

			"created_at": bson.M{
				"bsonType": "date",
			},

			"updated_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
