// Package plan decides, per playlist item, whether to skip, hardlink,
// byte-copy, or download. Decisions form a closed enumeration so the
// materializer can handle each branch exhaustively and each branch can be
// tested in isolation.
//
// Planning is cheap by construction: one in-memory archive lookup plus at
// most two stat calls per item, and never a remote request. The expensive
// path (downloading) is only chosen when the archive genuinely cannot
// satisfy an item.
package plan
