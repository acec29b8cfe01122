package session

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/dinglebob/dingle/pkg/diagnostics"
	"github.com/dinglebob/dingle/pkg/interpreter"
)

// importBuiltin binds import(path), which runs another file into the
// global scope. Relative paths are taken from the directory of the file
// being run, or the working directory in the REPL. A file already imported
// in this session is not run again.
func (s *Session) importBuiltin() *interpreter.Builtin {
	return &interpreter.Builtin{Name: "import", Params: 1, Fn: s.importFile}
}

func (s *Session) importFile(in *interpreter.Interpreter, args []interpreter.Value) (interpreter.Value, error) {
	v, err := interpreter.Expect(args[0], interpreter.TagString)
	if err != nil {
		return nil, err
	}
	path := v.(interpreter.Str).Value
	if !filepath.IsAbs(path) && s.baseDir != "" {
		path = filepath.Join(s.baseDir, path)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, ioError(errors.Wrapf(err, "import %s", path))
	}

	if s.loading[abs] {
		return nil, &interpreter.RuntimeError{
			Code:    diagnostics.EIO,
			Message: "Import cycle: '" + path + "' is already being imported.",
		}
	}
	if s.imported[abs] {
		return interpreter.NewNone(), nil
	}

	src, err := os.ReadFile(abs)
	if err != nil {
		return nil, ioError(errors.Wrapf(err, "import %s", path))
	}
	s.logger.Debug("importing", zap.String("path", abs))

	s.loading[abs] = true
	defer delete(s.loading, abs)

	stmts, err := s.load(string(src), path)
	if err != nil {
		var de *DiagnosticError
		if errors.As(err, &de) && len(de.Diagnostics) > 0 {
			d := de.Diagnostics[0]
			return nil, &interpreter.RuntimeError{Code: d.Code, Message: d.Message, Span: d.Span}
		}
		return nil, ioError(err)
	}
	if err := in.Execute(stmts); err != nil {
		return nil, err
	}
	s.imported[abs] = true
	return interpreter.NewNone(), nil
}

func ioError(err error) *interpreter.RuntimeError {
	return &interpreter.RuntimeError{Code: diagnostics.EIO, Message: err.Error()}
}
