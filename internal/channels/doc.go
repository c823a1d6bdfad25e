// Package channels holds the static catalog of output channel layouts
// understood by the Dolby decoder plugin.
//
// Each layout pairs a name such as "5.1.4" with the decoder's numeric
// out-ch-config identifier and the ordered list of channel labels. Position in
// the label list is the physical channel index used by the deinterleaver, so
// the order here drives file naming, merge order, and FLAC tagging alike.
package channels
