// Package keycodec переводит числовой идентификатор записи в короткий ключ и обратно.
//
// Ключ - это запись числа в позиционной системе с основанием 62, где цифрами служат символы
// алфавита Alphabet (`a` - ноль). Старший разряд идет первым, ведущих нулей нет, кроме
// единственного случая Encode(0) == "a".
package keycodec

import (
	"errors"
	"math"
	"strings"
)

// Alphabet цифры base62 в порядке возрастания.
const Alphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// MaxKeyLength максимальная длина ключа, которую допускает хранилище.
const MaxKeyLength = 10

const base = uint64(len(Alphabet))

// ErrInvalidKey ключ пустой, содержит символ вне алфавита или не помещается в uint64.
var ErrInvalidKey = errors.New("invalid key")

// digits обратная таблица символ -> значение разряда, -1 для символов вне алфавита.
var digits = func() [256]int {
	var t [256]int
	for i := range t {
		t[i] = -1
	}
	for i := range len(Alphabet) {
		t[Alphabet[i]] = i
	}
	return t
}()

// Encode возвращает base62 представление id.
func Encode(id uint64) string {
	if id == 0 {
		return Alphabet[:1]
	}

	// 11 разрядов хватает на любой uint64.
	var buf [11]byte
	i := len(buf)
	for id > 0 {
		i--
		buf[i] = Alphabet[id%base]
		id /= base
	}
	return string(buf[i:])
}

// Decode разбирает ключ обратно в число. Учитывается каждый символ ключа, включая последний.
func Decode(key string) (uint64, error) {
	if key == "" {
		return 0, ErrInvalidKey
	}

	var num uint64
	for i := range len(key) {
		d := digits[key[i]]
		if d < 0 {
			return 0, ErrInvalidKey
		}
		if num > (math.MaxUint64-uint64(d))/base {
			return 0, ErrInvalidKey
		}
		num = num*base + uint64(d)
	}
	return num, nil
}

// Valid проверяет, что строку можно использовать как пользовательский ключ.
func Valid(key string) bool {
	if key == "" || len(key) > MaxKeyLength {
		return false
	}
	return strings.IndexFunc(key, func(r rune) bool {
		return r >= 256 || digits[r] < 0
	}) == -1
}
