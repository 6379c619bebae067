package media

// Merge combines the best-known snapshot for a track with a newer partial
// read. Fields present in incoming overwrite prev; fields the new read is
// missing keep their previous value, so a partial poll never erases metadata
// already captured. Duration only moves forward to a valid value: an incoming
// zero never degrades a previously-known positive duration.
// Merge(x, x) == x.
func Merge(prev, incoming Snapshot) Snapshot {
	if prev.Empty() {
		return incoming
	}

	out := prev
	if fieldPresent(incoming.Title) {
		out.Title = incoming.Title
	}
	if fieldPresent(incoming.Artist) {
		out.Artist = incoming.Artist
	}
	if fieldPresent(incoming.Album) {
		out.Album = incoming.Album
	}
	if fieldPresent(incoming.AlbumArtist) {
		out.AlbumArtist = incoming.AlbumArtist
	}
	if fieldPresent(incoming.Genre) {
		out.Genre = incoming.Genre
	}
	if fieldPresent(incoming.AppID) {
		out.AppID = incoming.AppID
	}
	if fieldPresent(incoming.AppName) {
		out.AppName = incoming.AppName
	}
	if incoming.TrackNumber > 0 {
		out.TrackNumber = incoming.TrackNumber
	}
	if incoming.Year > 0 {
		out.Year = incoming.Year
	}
	if incoming.Duration > 0 {
		out.Duration = incoming.Duration
	}
	if incoming.Position > 0 {
		out.Position = incoming.Position
	}
	if incoming.Status != StatusUnknown {
		out.Status = incoming.Status
	}
	return out
}
