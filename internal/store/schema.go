package store

import "github.com/parthibdey/ISRC-Unclaimed-Music-Analysis/internal/constants"

const worksTable = constants.WorksTable

// Columns of the unclaimed works table in source file order.
var workColumns = []string{
	"right_share_record_id",
	"resource_record_id",
	"musical_work_record_id",
	"isrc",
	"dsp_resource_id",
	"resource_title",
	"resource_sub_title",
	"alternative_resource_title",
	"display_artist_name",
	"display_artist_isni",
	"duration",
	"unclaimed_right_share_percentage",
	"percentile_for_prioritisation",
}

const createWorksTable = `
CREATE TABLE IF NOT EXISTS ` + worksTable + ` (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	right_share_record_id TEXT,
	resource_record_id TEXT,
	musical_work_record_id TEXT,
	isrc TEXT,
	dsp_resource_id TEXT,
	resource_title TEXT,
	resource_sub_title TEXT,
	alternative_resource_title TEXT,
	display_artist_name TEXT,
	display_artist_isni TEXT,
	duration INTEGER,
	unclaimed_right_share_percentage REAL,
	percentile_for_prioritisation REAL
);
`

// Non-unique: the dataset repeats ISRCs across right-share records.
const createWorksIndex = `
CREATE INDEX IF NOT EXISTS ` + constants.WorksISRCIndex + ` ON ` + worksTable + `(isrc);
`

const dropWorksTable = `DROP TABLE IF EXISTS ` + worksTable + `;`

const Schema = createWorksTable + createWorksIndex
