// Package vision extracts text from receipt photos with the Cloud Vision API
// and parses the store, date and total out of the recognised text.
package vision
