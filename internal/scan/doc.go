// Package scan defines the shared data model for anemia screening scans.
//
// It holds the slot set captured during a session, the WHO stage enum with its
// hemoglobin classification fallback, the structured analysis result, the
// subject (patient) metadata forwarded to providers, and the persisted record
// shape. Parsing helpers apply a uniform default-on-missing rule so stored
// documents with absent optional fields always resolve to usable values.
package scan
