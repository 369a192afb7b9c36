package deparse

import pg_query "github.com/pganalyze/pg_query_go/v6"

// Window frame option bits. pg_query_go exposes WindowDef.FrameOptions as a
// raw int32 bitmask straight off PostgreSQL's own parsenodes.h; there is no
// generated enum to dispatch on, so the layout is reproduced here verbatim.
const (
	frameOptionNondefault           = 0x00001
	frameOptionRange                = 0x00002
	frameOptionRows                 = 0x00004
	frameOptionGroups               = 0x00008
	frameOptionBetween              = 0x00010
	frameOptionStartUnboundedPrec   = 0x00020
	frameOptionEndUnboundedPrec     = 0x00040
	frameOptionStartUnboundedFollow = 0x00080
	frameOptionEndUnboundedFollow   = 0x00100
	frameOptionStartCurrentRow      = 0x00200
	frameOptionEndCurrentRow        = 0x00400
	frameOptionStartOffsetPrec      = 0x00800
	frameOptionEndOffsetPrec        = 0x01000
	frameOptionStartOffsetFollow    = 0x02000
	frameOptionEndOffsetFollow      = 0x04000
	frameOptionExcludeCurrentRow    = 0x08000
	frameOptionExcludeGroup         = 0x10000
	frameOptionExcludeTies          = 0x20000
)

// frameClause renders a WindowDef's ROWS/RANGE/GROUPS BETWEEN ... clause,
// or "" when the window carries only the implicit default frame.
func (d *deparser) frameClause(w *pg_query.WindowDef) (string, error) {
	opts := w.FrameOptions
	if opts&frameOptionNondefault == 0 {
		return "", nil
	}

	var kind string
	switch {
	case opts&frameOptionRange != 0:
		kind = "RANGE"
	case opts&frameOptionRows != 0:
		kind = "ROWS"
	case opts&frameOptionGroups != 0:
		kind = "GROUPS"
	default:
		return "", &UnsupportedNode{Kind: "WindowDef:FrameOptions", Payload: w}
	}

	start, err := d.frameBound(opts, w.StartOffset, true)
	if err != nil {
		return "", err
	}

	out := kind + " "
	if opts&frameOptionBetween != 0 {
		end, err := d.frameBound(opts, w.EndOffset, false)
		if err != nil {
			return "", err
		}
		out += "BETWEEN " + start + " AND " + end
	} else {
		out += start
	}

	switch {
	case opts&frameOptionExcludeCurrentRow != 0:
		out += " EXCLUDE CURRENT ROW"
	case opts&frameOptionExcludeGroup != 0:
		out += " EXCLUDE GROUP"
	case opts&frameOptionExcludeTies != 0:
		out += " EXCLUDE TIES"
	}

	return out, nil
}

// frameBound renders one side (start or end) of a frame's BETWEEN clause.
func (d *deparser) frameBound(opts int32, offset *pg_query.Node, isStart bool) (string, error) {
	if isStart {
		switch {
		case opts&frameOptionStartUnboundedPrec != 0:
			return "UNBOUNDED PRECEDING", nil
		case opts&frameOptionStartCurrentRow != 0:
			return "CURRENT ROW", nil
		case opts&frameOptionStartOffsetPrec != 0:
			return d.frameOffsetBound(offset, "PRECEDING")
		case opts&frameOptionStartOffsetFollow != 0:
			return d.frameOffsetBound(offset, "FOLLOWING")
		case opts&frameOptionStartUnboundedFollow != 0:
			return "UNBOUNDED FOLLOWING", nil
		}
		return "", &UnsupportedNode{Kind: "WindowDef:FrameOptions:start", Payload: opts}
	}

	switch {
	case opts&frameOptionEndUnboundedFollow != 0:
		return "UNBOUNDED FOLLOWING", nil
	case opts&frameOptionEndCurrentRow != 0:
		return "CURRENT ROW", nil
	case opts&frameOptionEndOffsetFollow != 0:
		return d.frameOffsetBound(offset, "FOLLOWING")
	case opts&frameOptionEndOffsetPrec != 0:
		return d.frameOffsetBound(offset, "PRECEDING")
	case opts&frameOptionEndUnboundedPrec != 0:
		return "UNBOUNDED PRECEDING", nil
	}
	return "", &UnsupportedNode{Kind: "WindowDef:FrameOptions:end", Payload: opts}
}

func (d *deparser) frameOffsetBound(offset *pg_query.Node, dir string) (string, error) {
	expr, err := d.deparseNode(offset, none)
	if err != nil {
		return "", err
	}
	return expr + " " + dir, nil
}
