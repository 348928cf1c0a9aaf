package stream

import (
	"errors"

	"github.com/ezrec/promdump/translate"
)

var f = translate.From

var (
	ErrBlockSize = errors.New(f("block size invalid"))
)
