package server

import (
	"errors"
	"fmt"
	"image"
	"log"

	"github.com/ironsheep/pixel-slider-mcp/internal/engine"
	"github.com/ironsheep/pixel-slider-mcp/internal/imaging"
)

// errNoSession is returned by tools that need a loaded image.
var errNoSession = errors.New("no image loaded")

// session is one loaded image and the engine computing its levels.
type session struct {
	id     int
	engine *engine.Engine
	info   imaging.ImageInfo
}

// openSession replaces the current session with a new engine for img and
// starts it. The previous engine is cancelled and its source leaves the
// image cache unless img was read from the same path. If the new engine
// cannot start, img leaves the cache as well.
func (s *Server) openSession(img *imaging.LoadedImage, opts engine.Options) (sess *session, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if old := s.session; old != nil {
		old.engine.Cancel()
		if old.info.Path != img.Info.Path {
			s.cache.Evict(old.info.Path)
		}
		s.session = nil
	}
	defer func() {
		if err != nil {
			s.cache.Evict(img.Info.Path)
		}
	}()

	s.sessions++
	id := s.sessions

	var eng *engine.Engine
	opts.Listener = func(ev engine.Event) {
		s.levelEvent(id, eng, ev)
	}

	eng, err = engine.New(img.Image, opts)
	if err != nil {
		return nil, err
	}
	sess = &session{id: id, engine: eng, info: img.Info}
	if err = eng.Start(s.ctx); err != nil {
		return nil, err
	}
	s.session = sess

	if s.cfg.Debug() {
		plan := eng.Plan()
		log.Printf("session %d: %s (%dx%d), %d levels, unit %.3f",
			id, img.Info.Path, img.Info.Width, img.Info.Height, plan.MaxLevel, plan.BlockSizeUnit)
	}
	return sess, nil
}

// current returns the active session.
func (s *Server) current() (*session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == nil {
		return nil, errNoSession
	}
	return s.session, nil
}

// closeSession cancels and drops the active session and evicts its source
// from the image cache. It reports whether a session was open.
func (s *Server) closeSession() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == nil {
		return false
	}
	s.session.engine.Cancel()
	s.cache.Evict(s.session.info.Path)
	if s.cfg.Debug() {
		log.Printf("session %d: closed, %d sources cached", s.session.id, s.cache.Len())
	}
	s.session = nil
	return true
}

// levelEvent turns an engine event into a client notification.
func (s *Server) levelEvent(id int, eng *engine.Engine, ev engine.Event) {
	blockSize := eng.Plan().BlockSize(ev.Level)
	if ev.Err != nil {
		s.notify(MethodLevelFailed, &LevelFailedParams{
			Session:   id,
			Level:     ev.Level,
			BlockSize: blockSize,
			Error:     ev.Err.Error(),
		})
		return
	}
	s.notify(MethodLevelReady, &LevelReadyParams{
		Session:   id,
		Level:     ev.Level,
		BlockSize: blockSize,
		Selected:  ev.Selected,
	})
}

// resolveLevel returns the requested level, or the selection when level is
// nil, after checking that it exists.
func (sess *session) resolveLevel(level *int) (int, error) {
	plan := sess.engine.Plan()
	if level == nil {
		return sess.engine.Selection(), nil
	}
	if *level < 0 || *level > plan.MaxLevel {
		return 0, fmt.Errorf("%w: %d not in 0..%d", engine.ErrLevelRange, *level, plan.MaxLevel)
	}
	return *level, nil
}

// readyLevel returns the image of a Ready level.
func (sess *session) readyLevel(level *int) (int, *image.NRGBA, error) {
	lv, err := sess.resolveLevel(level)
	if err != nil {
		return 0, nil, err
	}
	img, ok := sess.engine.Cached(lv)
	if !ok {
		return lv, nil, fmt.Errorf("level %d is not ready (%s)", lv, sess.engine.State(lv))
	}
	return lv, img, nil
}
