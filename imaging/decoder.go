package imaging

import (
	"context"
	"image"
	"runtime"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/inkwell-board/inkwell/internal/logging"
)

// Result is the outcome of decoding the source of one image object.
// Exactly one of Image and Err is set.
type Result struct {
	ID    uuid.UUID
	Image image.Image
	Err   error
}

// Decoder decodes sources in the background and hands every result to a
// post function, typically one that queues an event for the editor.
type Decoder struct {
	post func(Result)
	g    errgroup.Group
}

// NewDecoder returns a Decoder running at most workers decodes at once.
// workers <= 0 means GOMAXPROCS.
func NewDecoder(post func(Result), workers int) *Decoder {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	d := &Decoder{post: post}
	d.g.SetLimit(workers)
	return d
}

// Go schedules the decode of src for image id. It blocks while all
// workers are busy.
func (d *Decoder) Go(id uuid.UUID, src []byte) {
	d.g.Go(func() error {
		img, _, err := Decode(src)
		if err != nil {
			logging.L().Warn("imaging: decode failed", "image", id, "err", err)
			img = nil
		}
		d.post(Result{ID: id, Image: img, Err: err})
		return nil
	})
}

// Wait blocks until every scheduled decode has posted its result.
func (d *Decoder) Wait() {
	_ = d.g.Wait()
}

// DecodeAll decodes every source and returns the images that decoded.
// A source that fails is logged and left out; only cancellation of ctx
// makes DecodeAll fail.
func DecodeAll(ctx context.Context, sources map[uuid.UUID][]byte) (map[uuid.UUID]image.Image, error) {
	type decoded struct {
		id  uuid.UUID
		img image.Image
	}
	out := make(chan decoded, len(sources))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for id, src := range sources {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			img, _, err := Decode(src)
			if err != nil {
				logging.L().Warn("imaging: decode failed", "image", id, "err", err)
				return nil
			}
			out <- decoded{id, img}
			return nil
		})
	}
	err := g.Wait()
	close(out)
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		return nil, err
	}

	images := make(map[uuid.UUID]image.Image, len(sources))
	for d := range out {
		images[d.id] = d.img
	}
	return images, nil
}
