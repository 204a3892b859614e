package models

// ChangeSet summarises which non-reserved keys differ between two configs.
type ChangeSet struct {
	Added    []string `json:"added"`
	Modified []string `json:"modified"`
	Removed  []string `json:"removed"`
}

// Version is an immutable record of a configuration at a point in time.
// Versions for a single config id form an ordered sequence, indexed from 1,
// never re-numbered.
type Version struct {
	Version   int            `json:"version"`
	Timestamp int64          `json:"timestamp"` // wall-clock millis
	Author    string         `json:"author"`
	Comment   string         `json:"comment"`
	Config    ConfigDocument `json:"config"`
	Changes   ChangeSet      `json:"changes"`
}

// Clone returns a deep copy of the version.
func (v *Version) Clone() *Version {
	if v == nil {
		return nil
	}

	out := *v
	out.Config = v.Config.Clone()
	out.Changes = ChangeSet{
		Added:    append([]string(nil), v.Changes.Added...),
		Modified: append([]string(nil), v.Changes.Modified...),
		Removed:  append([]string(nil), v.Changes.Removed...),
	}

	return &out
}

// HistoryExport is the wire form of an exported version history.
type HistoryExport struct {
	ConfigID   string     `json:"configId"`
	ExportDate string     `json:"exportDate"` // ISO-8601
	Versions   []*Version `json:"versions"`
}
