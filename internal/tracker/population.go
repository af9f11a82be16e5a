// Package tracker отслеживает присутствие игроков на сервере двумя
// взаимозаменяемыми стратегиями: чтением лога сервера и опросом
// его статусного интерфейса.
package tracker

import "sync"

// Population - текущее число игроков онлайн. Пишет цикл обнаружения,
// читает логика решения об отправке метрик, поэтому доступ защищен
// мьютексом. Значение не опускается ниже нуля.
type Population struct {
	mu    sync.Mutex
	count int
}

func NewPopulation() *Population {
	return &Population{}
}

// Inc увеличивает счетчик и возвращает новое значение.
func (p *Population) Inc() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.count++
	return p.count
}

// Dec уменьшает счетчик с полом в ноль и возвращает новое значение.
func (p *Population) Dec() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.count > 0 {
		p.count--
	}
	return p.count
}

// Set устанавливает точное значение (стратегия опроса знает полный
// состав, а не только дельты).
func (p *Population) Set(n int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if n < 0 {
		n = 0
	}
	p.count = n
}

func (p *Population) Count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.count
}
