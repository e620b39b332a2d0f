package scene

import "github.com/inkwell-board/inkwell/geom"

// EraseAt removes the single topmost object under p on the current page.
// Layers are scanned from the top, skipping hidden and locked ones. Within
// a layer text boxes are checked before strokes, newest first. It reports
// whether anything was removed.
func (d *Document) EraseAt(p geom.Point, radius float64) bool {
	page := d.Page()
	for li := len(page.Layers) - 1; li >= 0; li-- {
		l := page.Layers[li]
		if !l.Visible || l.Locked {
			continue
		}
		for ti := len(l.Texts) - 1; ti >= 0; ti-- {
			t := l.Texts[ti]
			if t.Bounds().Inflate(radius).Contains(p) {
				return d.Commit(Action{Kind: TextErase, Layer: li, Text: t, Index: ti}) == nil
			}
		}
		for si := len(l.Strokes) - 1; si >= 0; si-- {
			s := l.Strokes[si]
			if s.Hit(p, radius) {
				return d.Commit(Action{Kind: StrokeErase, Layer: li, Stroke: s, Index: si}) == nil
			}
		}
	}
	return false
}
