package rpc

import (
	"encoding/hex"
	"sort"
	"strings"

	"forgechain/types"

	rpctypes "github.com/tendermint/tendermint/rpc/jsonrpc/types"
)

// DelegateView is the wire projection of a registered delegate
// returned by GET_DELEGATES (§6).
type DelegateView struct {
	Username           string  `json:"username"`
	PublicKey          string  `json:"publicKey"`
	Address            string  `json:"address"`
	MissedBlocks       uint64  `json:"missedBlocks"`
	ForgedBlocks       uint64  `json:"forgedBlocks"`
	Votes              uint64  `json:"votes"`
	ConfirmedVoteCount int     `json:"confirmedVoteCount"`
	Approval           float64 `json:"approval"`
}

// ResultDelegates is GET_DELEGATES' envelope-wrapped result.
type ResultDelegates struct {
	Envelope
	Delegates []DelegateView `json:"delegates"`
	Count     int            `json:"count"`
}

// sortField is a single [field, direction] pair from the request's
// `sort` array.
type sortField struct {
	field string
	desc  bool
}

// GetDelegates is §6's `GET_DELEGATES` RPC handler: `limit` is
// required (1-100), `offset` defaults to 0, `username` is an optional
// ≥3-char prefix filter, `sort` is an optional list of [field,
// 'ASC'|'DESC'] pairs.
//
// Open question resolution (§9, "default sort order when sort is
// omitted is not explicitly defined"): this pins publicKey ASC as the
// default, as the spec's own fixtures suggest, with username ASC as
// the tiebreak whenever a sort field's values are equal (the scenario
// text explicitly allows "tiebreak by insertion or name"; a name
// tiebreak is deterministic without tracking registration order,
// which C2's registry does not otherwise need to do).
func GetDelegates(ctx *rpctypes.Context, limit int, offset int, username string, sort [][]string) (*ResultDelegates, error) {
	if limit < 1 || limit > 100 {
		return &ResultDelegates{Envelope: failEnvelope("IS NOT VALID REQUEST:'GET_DELEGATES'... Missing required property: limit")}, nil
	}
	if offset < 0 {
		return &ResultDelegates{Envelope: failEnvelope("IS NOT VALID REQUEST:'GET_DELEGATES'... offset must be >= 0")}, nil
	}
	if username != "" && len(username) < 3 {
		return &ResultDelegates{Envelope: failEnvelope("IS NOT VALID REQUEST:'GET_DELEGATES'... username must be >= 3 chars")}, nil
	}

	fields, err := parseSortFields(sort)
	if err != nil {
		return &ResultDelegates{Envelope: failEnvelope(err.Error())}, nil
	}

	accounts := env.Accounts.Delegates()
	filtered := make([]*types.Account, 0, len(accounts))
	for _, acct := range accounts {
		if username != "" && !strings.HasPrefix(acct.Delegate.Username, username) {
			continue
		}
		filtered = append(filtered, acct)
	}

	sortDelegateAccounts(filtered, fields)

	count := len(filtered)
	if offset >= count {
		return &ResultDelegates{Envelope: okEnvelope(), Delegates: []DelegateView{}, Count: count}, nil
	}
	end := offset + limit
	if end > count {
		end = count
	}

	page := make([]DelegateView, 0, end-offset)
	for _, acct := range filtered[offset:end] {
		page = append(page, delegateView(acct))
	}

	return &ResultDelegates{Envelope: okEnvelope(), Delegates: page, Count: count}, nil
}

func delegateView(acct *types.Account) DelegateView {
	d := acct.Delegate
	return DelegateView{
		Username:           d.Username,
		PublicKey:          hexEncode(d.PublicKey),
		Address:            acct.Address.String(),
		MissedBlocks:       d.MissedBlocks,
		ForgedBlocks:       d.ForgedBlocks,
		Votes:              d.Votes,
		ConfirmedVoteCount: d.ConfirmedVoteCount,
		Approval:           d.Approval,
	}
}

func parseSortFields(raw [][]string) ([]sortField, error) {
	fields := make([]sortField, 0, len(raw))
	for _, pair := range raw {
		if len(pair) != 2 {
			return nil, errSortShape
		}
		desc := strings.EqualFold(pair[1], "DESC")
		if !desc && !strings.EqualFold(pair[1], "ASC") {
			return nil, errSortDirection
		}
		fields = append(fields, sortField{field: pair[0], desc: desc})
	}
	return fields, nil
}

var (
	errSortShape     = sortError("IS NOT VALID REQUEST:'GET_DELEGATES'... sort entries must be [field, 'ASC'|'DESC']")
	errSortDirection = sortError("IS NOT VALID REQUEST:'GET_DELEGATES'... sort direction must be ASC or DESC")
)

type sortError string

func (e sortError) Error() string { return string(e) }

// sortDelegateAccounts sorts in place by the requested fields in
// order, falling back to publicKey-ASC/username-ASC when no sort is
// requested, per the §9 decision recorded above.
func sortDelegateAccounts(accounts []*types.Account, fields []sortField) {
	if len(fields) == 0 {
		sort.SliceStable(accounts, func(i, j int) bool {
			a, b := accounts[i].Delegate, accounts[j].Delegate
			ka, kb := hexEncode(a.PublicKey), hexEncode(b.PublicKey)
			if ka != kb {
				return ka < kb
			}
			return a.Username < b.Username
		})
		return
	}

	sort.SliceStable(accounts, func(i, j int) bool {
		a, b := accounts[i].Delegate, accounts[j].Delegate
		for _, f := range fields {
			cmp := compareDelegateField(a, b, f.field)
			if cmp == 0 {
				continue
			}
			if f.desc {
				return cmp > 0
			}
			return cmp < 0
		}
		return a.Username < b.Username
	})
}

func compareDelegateField(a, b *types.Delegate, field string) int {
	switch field {
	case "votes":
		return compareUint64(a.Votes, b.Votes)
	case "missedBlocks":
		return compareUint64(a.MissedBlocks, b.MissedBlocks)
	case "forgedBlocks":
		return compareUint64(a.ForgedBlocks, b.ForgedBlocks)
	case "confirmedVoteCount":
		return compareUint64(uint64(a.ConfirmedVoteCount), uint64(b.ConfirmedVoteCount))
	case "approval":
		switch {
		case a.Approval < b.Approval:
			return -1
		case a.Approval > b.Approval:
			return 1
		default:
			return 0
		}
	case "username":
		return strings.Compare(a.Username, b.Username)
	default:
		return 0
	}
}

func compareUint64(a, b uint64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func hexEncode(b []byte) string { return hex.EncodeToString(b) }
