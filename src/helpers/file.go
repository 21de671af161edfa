package helpers

import (
	"fmt"
	"os"

	"schemaforge/src/settings"

	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

// FileExists checks if a file exists and is not a directory
func FileExists(filename string, logger *zap.SugaredLogger) bool {
	args := settings.GetSettings()

	info, err := os.Stat(filename)
	if err != nil {
		if os.IsNotExist(err) {
			if args.Debug && args.Verbose {
				logger.Infof("File does not exist: %s", filename)
			}
			return false // File does not exist
		}

		logger.Infof("Error checking file %s for existence: %s", filename, err)
		return false // Some other error occurred
	}

	return !info.IsDir() // Return true if it's not a directory
}

// EncodeBSON marshals a document for a schema data file.
func EncodeBSON(doc interface{}) ([]byte, error) {
	bsonData, err := bson.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("error encoding BSON: %w", err)
	}
	return bsonData, nil
}

// DecodeBSON unmarshals a schema data file into out.
func DecodeBSON(bsonData []byte, out interface{}) error {
	if err := bson.Unmarshal(bsonData, out); err != nil {
		return fmt.Errorf("error decoding BSON: %w", err)
	}
	return nil
}
