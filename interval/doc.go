/*Package interval stores the binding ranges of a single factor on one reference
  sequence.

  Two representations are provided.  A RawSet keeps every piece of evidence
  verbatim, overlaps included, so that per-position support depth can be
  computed.  A MergedSet keeps a union: overlapping (or touching) intervals are
  merged as they are added, and their annotations are combined with a
  MergeFunc.  Proximity queries (IsOverlap, NearestSite, FilterOverlap, Dist)
  are only defined on a MergedSet.  RawSet.Collapse is the only conversion
  between the two; it applies a depth cutoff chosen by a CollapseMode.

  Coordinates are 0-based and both endpoints are occupied: the interval
  [7, 9] covers positions 7, 8 and 9.
*/
package interval
