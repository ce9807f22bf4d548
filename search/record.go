package search

import (
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap/zapcore"

	"github.com/benz9527/xsearch/lib/infra"
	"github.com/benz9527/xsearch/lib/list"
	"github.com/benz9527/xsearch/lib/tree"
)

var _ zapcore.ObjectMarshaler = (*Record)(nil)

// Record is a scored web page.
// The title, address, domain and score are fixed at creation, the
// rank is derived from the collection that the record is added to.
type Record struct {
	title   string
	address string
	domain  string
	score   int32
	index   uint64 // 1-based insertion index, 0 if never added.
	owner   *Collection
	node    tree.RBNode[int32, *Record]
	elem    *list.NodeElement[*Record]
}

// NewRecord extracts the domain from the address host without
// the leading "www.".
func NewRecord(title, address string, score int32) (*Record, error) {
	domain, err := DomainOf(address)
	if err != nil {
		return nil, err
	}
	return &Record{
		title:   title,
		address: address,
		domain:  domain,
		score:   score,
	}, nil
}

// DomainOf returns the host of an absolute address, "https://www.go.dev/doc"
// is "go.dev".
func DomainOf(address string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(address))
	if err != nil {
		return "", infra.WrapErrorStackWithMessage(ErrInvalidAddress, err.Error())
	}
	host := u.Hostname()
	if host == "" {
		return "", infra.WrapErrorStackWithMessage(ErrInvalidAddress, "no host in "+strconv.Quote(address))
	}
	return strings.TrimPrefix(strings.ToLower(host), "www."), nil
}

// ParseScore rejects the non-numeric and the out of int32 input.
func ParseScore(s string) (int32, error) {
	score, err := strconv.ParseInt(strings.TrimSpace(s), 10, 32)
	if err != nil {
		return 0, infra.WrapErrorStackWithMessage(ErrMalformedScore, strconv.Quote(s))
	}
	return int32(score), nil
}

func (r *Record) Title() string   { return r.title }
func (r *Record) Address() string { return r.address }
func (r *Record) Domain() string  { return r.domain }
func (r *Record) Score() int32    { return r.score }
func (r *Record) Index() uint64   { return r.index }

// Rank is 1 for the highest score in the collection.
// 0 means that the record is not in any collection.
func (r *Record) Rank() int64 {
	if r == nil || r.node == nil {
		return 0
	}
	return r.node.Rank()
}

// Color of the tree node, the detached record is Black.
func (r *Record) Color() tree.RBColor {
	if r == nil || r.node == nil {
		return tree.Black
	}
	return r.node.Color()
}

func (r *Record) Owned() bool {
	return r != nil && r.owner != nil
}

func (r *Record) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("title", r.title)
	enc.AddString("url", r.address)
	enc.AddString("domain", r.domain)
	enc.AddInt32("score", r.score)
	enc.AddInt64("rank", r.Rank())
	enc.AddUint64("index", r.index)
	return nil
}

func (r *Record) String() string {
	builder := strings.Builder{}
	builder.WriteString("#")
	builder.WriteString(strconv.FormatInt(r.Rank(), 10))
	builder.WriteString(" [")
	builder.WriteString(strconv.FormatInt(int64(r.score), 10))
	builder.WriteString("] ")
	builder.WriteString(r.title)
	builder.WriteString(" (")
	builder.WriteString(r.domain)
	builder.WriteString(")")
	return builder.String()
}
