package render

import (
	"bytes"
	"fmt"
	"io"
	"sync"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

var disableConfigDir sync.Once

// PageCount validates data as a PDF and returns its number of pages.
func PageCount(data []byte) (int, error) {
	const op = "Verify"

	// pdfcpu would otherwise create a config directory under the user's home.
	disableConfigDir.Do(api.DisableConfigDir)

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	rs := bytes.NewReader(data)
	if err := api.Validate(rs, conf); err != nil {
		return 0, NewRenderError(op, ErrVerifyFailed, err.Error())
	}
	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return 0, NewRenderError(op, ErrVerifyFailed, err.Error())
	}

	pages, err := api.PageCount(rs, model.NewDefaultConfiguration())
	if err != nil {
		return 0, NewRenderError(op, ErrVerifyFailed, fmt.Sprintf("page count: %v", err))
	}
	return pages, nil
}
